package currency

import "testing"

func TestConvertScenario(t *testing.T) {
	// cart 1000x2 + 500x1 + express 100 = 2600 UAH at 42.0 -> 61.9 USD
	got := Convert(2600, USD)
	if got != 61.9 {
		t.Fatalf("expected 61.9, got %v", got)
	}
}

func TestConvertBaseIsIdentity(t *testing.T) {
	if got := Convert(2600, UAH); got != 2600 {
		t.Fatalf("expected 2600, got %v", got)
	}
}

func TestConvertUnknownCodeFallsBackToBase(t *testing.T) {
	if got := Convert(150, Code("GBP")); got != 150 {
		t.Fatalf("expected fallback rate 1, got %v", got)
	}
	if sign := Sign(Code("GBP")); sign != "UAH" {
		t.Fatalf("expected UAH sign fallback, got %s", sign)
	}
}

func TestMinorUnits(t *testing.T) {
	if got := MinorUnits(61.9); got != 6190 {
		t.Fatalf("expected 6190, got %d", got)
	}
	if got := MinorUnits(Convert(2600, USD)); got != 6190 {
		t.Fatalf("expected 6190 from converted total, got %d", got)
	}
}

func TestRoundingDiscrepancyIsBounded(t *testing.T) {
	// Sum of converted line totals may differ from the converted UAH sum by
	// rounding; the discrepancy must stay within a cent per line.
	lines := []int64{999, 1001, 47}
	var uahSum int64
	var convSum float64
	for _, l := range lines {
		uahSum += l
		convSum += Convert(l, EUR)
	}
	diff := convSum - Convert(uahSum, EUR)
	if diff < 0 {
		diff = -diff
	}
	if diff > 0.01*float64(len(lines)) {
		t.Fatalf("rounding discrepancy too large: %v", diff)
	}
}

func TestSupported(t *testing.T) {
	for _, c := range []Code{UAH, USD, EUR} {
		if !Supported(c) {
			t.Fatalf("expected %s supported", c)
		}
	}
	if Supported(Code("BTC")) {
		t.Fatal("BTC must not be supported")
	}
}
