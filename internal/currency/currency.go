// Package currency converts base-currency (UAH) amounts into the user's
// display currency using a static rate table. Prices and totals are stored
// as UAH integers everywhere; conversion happens only at the presentation
// and payment boundary.
package currency

import "math"

// Code identifies a supported currency.
type Code string

const (
	UAH Code = "UAH"
	USD Code = "USD"
	EUR Code = "EUR"
)

// Base is the storage/accounting currency all product prices are denominated in.
const Base = UAH

// rates maps a currency to how many UAH one unit of it costs.
var rates = map[Code]float64{
	UAH: 1,
	USD: 42.0,
	EUR: 45.0,
}

// signs maps a currency to its display symbol.
var signs = map[Code]string{
	UAH: "UAH",
	USD: "$",
	EUR: "€",
}

// Codes lists the supported currencies in display order.
var Codes = []Code{UAH, USD, EUR}

// Supported reports whether code is a known currency.
func Supported(code Code) bool {
	_, ok := rates[code]
	return ok
}

// Rate returns the UAH exchange rate for code, falling back to 1 (UAH) for
// unknown codes so a corrupt preference never breaks price display.
func Rate(code Code) float64 {
	if r, ok := rates[code]; ok {
		return r
	}
	return 1
}

// Sign returns the display symbol for code, falling back to the UAH label.
func Sign(code Code) string {
	if s, ok := signs[code]; ok {
		return s
	}
	return signs[UAH]
}

// Convert turns a UAH amount into the display currency, rounded to 2 decimal
// places half-away-from-zero. The same rule applies to unit prices, line
// totals and the delivery surcharge, so summing converted line totals may
// differ from converting the summed UAH total by up to a cent per line; the
// UAH integer sum stays authoritative for anything monetary.
func Convert(amountUAH int64, code Code) float64 {
	return round2(float64(amountUAH) / Rate(code))
}

// MinorUnits converts an already-converted display amount to the payment
// provider's minor unit (cents).
func MinorUnits(display float64) int64 {
	return int64(math.Round(display * 100))
}

// round2 rounds half away from zero, matching math.Round.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
