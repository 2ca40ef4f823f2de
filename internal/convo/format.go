package convo

import (
	"fmt"
	"strings"

	"techshop-bot/internal/currency"
	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
)

// cartTotals sums the cart in base-currency kopecks-free UAH and converts
// the total for display.
func cartTotals(lines []repo.CartLine, curr string) (totalUAH int64, display float64) {
	for _, line := range lines {
		totalUAH += line.Price * line.Quantity
	}
	return totalUAH, currency.Convert(totalUAH, currency.Code(curr))
}

func cartText(lang i18n.Lang, curr string, lines []repo.CartLine) string {
	code := currency.Code(curr)
	sign := currency.Sign(code)
	var b strings.Builder
	b.WriteString(i18n.T(lang, i18n.CartTitle))
	for _, line := range lines {
		unit := currency.Convert(line.Price, code)
		fmt.Fprintf(&b, "▫️ %s — %.2f %s%s x %d\n",
			line.Name, unit, sign, i18n.T(lang, i18n.UnitSuffix), line.Quantity)
	}
	_, total := cartTotals(lines, curr)
	fmt.Fprintf(&b, "\n<b>%s %.2f %s</b>", i18n.T(lang, i18n.CheckTotal), total, sign)
	return b.String()
}

func productText(lang i18n.Lang, curr string, p *repo.Product) string {
	code := currency.Code(curr)
	return fmt.Sprintf("<b>%s</b>\n%s %s\n\n%s\n\n💰 %.2f %s",
		p.Name,
		i18n.T(lang, i18n.CatLabel), i18n.Category(lang, p.Category),
		p.Description,
		currency.Convert(p.Price, code), currency.Sign(code))
}

// itemsSnapshot renders the cart lines into the plain-text form stored on
// the order. It is frozen at delivery selection and never recomputed.
func itemsSnapshot(lines []repo.CartLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", line.Name, line.Quantity))
	}
	return strings.Join(parts, "\n")
}

func deliveryLabel(lang i18n.Lang, method string) string {
	if method == DeliveryExpress {
		return i18n.T(lang, i18n.CheckExp)
	}
	return i18n.T(lang, i18n.CheckStd)
}

// checkText is the pre-payment receipt shown at the confirmation step.
func checkText(lang i18n.Lang, draft checkoutDraft) string {
	sign := currency.Sign(currency.Code(draft.Currency))
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n\n", i18n.T(lang, i18n.CheckHeader))
	fmt.Fprintf(&b, "👤 %s\n📞 %s\n📍 %s\n\n", draft.Name, draft.Phone, draft.Address)
	fmt.Fprintf(&b, "%s\n%s\n\n", i18n.T(lang, i18n.CheckItems), draft.ItemsText)
	fmt.Fprintf(&b, "%s %s\n", i18n.T(lang, i18n.CheckDelivery), deliveryLabel(lang, draft.Delivery))
	fmt.Fprintf(&b, "<b>%s %.2f %s</b>", i18n.T(lang, i18n.CheckTotal), draft.TotalDisplay, sign)
	return b.String()
}

func statusKey(status repo.OrderStatus) i18n.Key {
	switch status {
	case repo.StatusPaid:
		return i18n.StatusPaid
	case repo.StatusApproved:
		return i18n.StatusApproved
	case repo.StatusRejected:
		return i18n.StatusRejected
	default:
		return i18n.StatusPending
	}
}

func myOrdersText(lang i18n.Lang, orders []repo.Order) string {
	var b strings.Builder
	b.WriteString(i18n.T(lang, i18n.MyOrdersTitle))
	for _, o := range orders {
		fmt.Fprintf(&b, "🧾 <b>#%d</b> | %s: %.2f %s | %s: %s\n",
			o.ID,
			i18n.T(lang, i18n.TotalLbl), o.TotalPrice, currency.Sign(currency.Code(o.CurrencyCode)),
			i18n.T(lang, i18n.StatusLbl), i18n.T(lang, statusKey(o.Status)))
	}
	return b.String()
}

// adminOrderText is the full order card shown to admins. Admin surfaces are
// intentionally not localized.
func adminOrderText(o *repo.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 <b>Order #%d</b>\n\n", o.ID)
	fmt.Fprintf(&b, "👤 %s\n📞 %s\n📍 %s\n\n", o.CustomerName, o.CustomerPhone, o.CustomerAddr)
	fmt.Fprintf(&b, "📦 Items:\n%s\n\n", o.ItemsText)
	fmt.Fprintf(&b, "🚚 Delivery: %s\n", o.DeliveryMethod)
	fmt.Fprintf(&b, "💰 Total: %.2f %s\n", o.TotalPrice, o.CurrencyCode)
	fmt.Fprintf(&b, "📌 Status: %s", o.Status)
	return b.String()
}
