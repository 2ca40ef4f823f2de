package convo

import (
	"fmt"

	"techshop-bot/internal/currency"
	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
)

func mainMenuKeyboard(lang i18n.Lang, admin bool) tg.ReplyKeyboardMarkup {
	rows := [][]tg.KeyboardButton{
		{{Text: i18n.T(lang, i18n.CatalogBtn)}, {Text: i18n.T(lang, i18n.CartBtn)}},
		{{Text: i18n.T(lang, i18n.OrdersBtn)}, {Text: i18n.T(lang, i18n.InfoBtn)}},
		{{Text: i18n.T(lang, i18n.SettingsBtn)}},
	}
	if admin {
		rows = append(rows, []tg.KeyboardButton{{Text: i18n.T(lang, i18n.AdminBtn)}})
	}
	return tg.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

func languageKeyboard() tg.InlineKeyboardMarkup {
	return tg.InlineKeyboardMarkup{InlineKeyboard: [][]tg.InlineKeyboardButton{
		tg.InlineRow(
			tg.InlineKeyboardButton{Text: "🇺🇦 Українська", CallbackData: "setlang_ua"},
			tg.InlineKeyboardButton{Text: "🇺🇸 English", CallbackData: "setlang_en"},
		),
	}}
}

func currencyKeyboard() tg.InlineKeyboardMarkup {
	row := make([]tg.InlineKeyboardButton, 0, len(currency.Codes))
	for _, code := range currency.Codes {
		row = append(row, tg.InlineKeyboardButton{
			Text:         string(code),
			CallbackData: "setcurr_" + string(code),
		})
	}
	return tg.InlineKeyboardMarkup{InlineKeyboard: [][]tg.InlineKeyboardButton{row}}
}

func settingsKeyboard(lang i18n.Lang) tg.InlineKeyboardMarkup {
	return tg.InlineKeyboardMarkup{InlineKeyboard: [][]tg.InlineKeyboardButton{
		tg.InlineRow(tg.InlineKeyboardButton{Text: i18n.T(lang, i18n.ChangeLangBtn), CallbackData: "settings_lang"}),
		tg.InlineRow(tg.InlineKeyboardButton{Text: i18n.T(lang, i18n.ChangeCurrBtn), CallbackData: "settings_curr"}),
	}}
}

func categoriesKeyboard(lang i18n.Lang, cats []string) tg.InlineKeyboardMarkup {
	rows := make([][]tg.InlineKeyboardButton, 0, len(cats))
	for _, cat := range cats {
		rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
			Text:         i18n.Category(lang, cat),
			CallbackData: "category_" + cat,
		}))
	}
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func productsKeyboard(lang i18n.Lang, curr string, products []repo.Product) tg.InlineKeyboardMarkup {
	code := currency.Code(curr)
	sign := currency.Sign(code)
	rows := make([][]tg.InlineKeyboardButton, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("%s | %.2f %s", p.Name, currency.Convert(p.Price, code), sign)
		rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
			Text:         label,
			CallbackData: fmt.Sprintf("product_%d", p.ID),
		}))
	}
	rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
		Text:         i18n.T(lang, i18n.BackMenu),
		CallbackData: "back_to_menu",
	}))
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func productDetailKeyboard(lang i18n.Lang, productID int64) tg.InlineKeyboardMarkup {
	return tg.InlineKeyboardMarkup{InlineKeyboard: [][]tg.InlineKeyboardButton{
		tg.InlineRow(tg.InlineKeyboardButton{
			Text:         i18n.T(lang, i18n.AddCart),
			CallbackData: fmt.Sprintf("add_cart_%d", productID),
		}),
		tg.InlineRow(tg.InlineKeyboardButton{
			Text:         i18n.T(lang, i18n.BackCats),
			CallbackData: "back_to_cats",
		}),
	}}
}

func cartKeyboard(lang i18n.Lang, lines []repo.CartLine) tg.InlineKeyboardMarkup {
	rows := make([][]tg.InlineKeyboardButton, 0, len(lines)+2)
	for _, line := range lines {
		rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
			Text:         fmt.Sprintf("❌ %s", line.Name),
			CallbackData: fmt.Sprintf("del_cart_%d", line.ID),
		}))
	}
	rows = append(rows,
		tg.InlineRow(tg.InlineKeyboardButton{Text: i18n.T(lang, i18n.CartClear), CallbackData: "clear_cart"}),
		tg.InlineRow(tg.InlineKeyboardButton{Text: i18n.T(lang, i18n.CartCheckout), CallbackData: "checkout_start"}),
	)
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// checkoutStepKeyboard is the reply keyboard shown during text-entry steps.
// The back row is omitted on the first step, where there is nowhere to go.
func checkoutStepKeyboard(lang i18n.Lang, withBack bool) tg.ReplyKeyboardMarkup {
	rows := make([][]tg.KeyboardButton, 0, 2)
	if withBack {
		rows = append(rows, []tg.KeyboardButton{{Text: i18n.T(lang, i18n.BackStep)}})
	}
	rows = append(rows, []tg.KeyboardButton{{Text: i18n.T(lang, i18n.Cancel)}})
	return tg.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}

func deliveryKeyboard(lang i18n.Lang) tg.ReplyKeyboardMarkup {
	return tg.ReplyKeyboardMarkup{
		Keyboard: [][]tg.KeyboardButton{
			{{Text: i18n.T(lang, i18n.DeliveryStd)}, {Text: i18n.T(lang, i18n.DeliveryExp)}},
			{{Text: i18n.T(lang, i18n.BackStep)}},
			{{Text: i18n.T(lang, i18n.Cancel)}},
		},
		ResizeKeyboard: true,
	}
}

func confirmationKeyboard(lang i18n.Lang) tg.ReplyKeyboardMarkup {
	return tg.ReplyKeyboardMarkup{
		Keyboard: [][]tg.KeyboardButton{
			{{Text: i18n.T(lang, i18n.ConfirmBtn)}},
			{{Text: i18n.T(lang, i18n.BackStep)}},
			{{Text: i18n.T(lang, i18n.Cancel)}},
		},
		ResizeKeyboard: true,
	}
}

func adminOrdersKeyboard(orders []repo.Order) tg.InlineKeyboardMarkup {
	rows := make([][]tg.InlineKeyboardButton, 0, len(orders)+1)
	for _, o := range orders {
		rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
			Text:         fmt.Sprintf("#%d | %s | %.2f %s", o.ID, o.Status, o.TotalPrice, o.CurrencyCode),
			CallbackData: fmt.Sprintf("view_order_%d", o.ID),
		}))
	}
	rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
		Text:         "🔄 Refresh",
		CallbackData: "admin_refresh_orders",
	}))
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// adminOrderKeyboard builds the order detail keyboard. Decision buttons
// appear only while the order can still be decided.
func adminOrderKeyboard(o *repo.Order) tg.InlineKeyboardMarkup {
	rows := make([][]tg.InlineKeyboardButton, 0, 2)
	if o.Status.Decidable() {
		rows = append(rows, tg.InlineRow(
			tg.InlineKeyboardButton{Text: "✅ Approve", CallbackData: fmt.Sprintf("approve_%d", o.ID)},
			tg.InlineKeyboardButton{Text: "❌ Reject", CallbackData: fmt.Sprintf("reject_%d", o.ID)},
		))
	}
	rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
		Text:         "🔙 Orders",
		CallbackData: "admin_back_orders",
	}))
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func adminRemoveKeyboard(products []repo.Product) tg.InlineKeyboardMarkup {
	rows := make([][]tg.InlineKeyboardButton, 0, len(products))
	for _, p := range products {
		rows = append(rows, tg.InlineRow(tg.InlineKeyboardButton{
			Text:         fmt.Sprintf("🗑 %s (%d UAH)", p.Name, p.Price),
			CallbackData: fmt.Sprintf("admin_del_%d", p.ID),
		}))
	}
	return tg.InlineKeyboardMarkup{InlineKeyboard: rows}
}
