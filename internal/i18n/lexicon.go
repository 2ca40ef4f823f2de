// Package i18n holds the user-facing string tables. Lookups are typed by
// language and key; unknown languages fall back to Ukrainian, unknown keys
// return the key itself so a missing translation is visible, not silent.
package i18n

// Lang is a supported interface language.
type Lang string

const (
	LangUA Lang = "ua"
	LangEN Lang = "en"
)

// Fallback is used when a user has an unknown language preference.
const Fallback = LangUA

// Key identifies a localized string.
type Key string

const (
	StartMsg    Key = "start_msg"
	SelectLang  Key = "select_lang"
	LangSet     Key = "lang_set"
	CurrencySet Key = "currency_set"

	CatalogBtn  Key = "catalog_btn"
	CartBtn     Key = "cart_btn"
	OrdersBtn   Key = "orders_btn"
	InfoBtn     Key = "info_btn"
	SettingsBtn Key = "settings_btn"
	AdminBtn    Key = "admin_btn"

	SettingsMenu  Key = "settings_menu"
	ChangeLangBtn Key = "change_lang_btn"
	ChangeCurrBtn Key = "change_curr_btn"

	InfoMsg   Key = "info_msg"
	EmptyCat  Key = "empty_cat"
	ChooseCat Key = "choose_cat"
	CatLabel  Key = "cat_label"
	BackMenu  Key = "back_menu"
	BackCats  Key = "back_cats"
	AddCart   Key = "add_cart"
	AddedCart Key = "added_cart"

	CartTitle    Key = "cart_title"
	CartEmpty    Key = "cart_empty"
	CartClear    Key = "cart_clear"
	CartCheckout Key = "cart_checkout"
	Cleared      Key = "cleared"

	CheckoutName   Key = "checkout_name"
	CheckoutPhone  Key = "checkout_phone"
	CheckoutAddr   Key = "checkout_addr"
	CheckoutMethod Key = "checkout_method"
	DeliveryStd    Key = "delivery_std"
	DeliveryExp    Key = "delivery_exp"
	PhoneFormat    Key = "phone_format"
	DeliveryPick   Key = "delivery_pick"

	CheckHeader   Key = "check_header"
	CheckItems    Key = "check_items"
	CheckDelivery Key = "check_delivery"
	CheckTotal    Key = "check_total"
	CheckStd      Key = "check_std"
	CheckExp      Key = "check_exp"

	BackStep  Key = "back_step"
	Cancel    Key = "cancel"
	Cancelled Key = "cancelled"

	ConfirmBtn   Key = "confirm_btn"
	InvoiceTitle Key = "invoice_title"
	InvoiceDesc  Key = "invoice_desc"
	InvoiceError Key = "invoice_error"
	SuccessPay   Key = "success_pay"

	MyOrdersTitle Key = "my_orders_title"
	NoOrders      Key = "no_orders"

	OrderApproved Key = "order_approved"
	OrderRejected Key = "order_rejected"

	StatusPending  Key = "status_pending"
	StatusPaid     Key = "status_paid"
	StatusApproved Key = "status_approved"
	StatusRejected Key = "status_rejected"
	StatusLbl      Key = "status_lbl"
	TotalLbl       Key = "total_lbl"
	DeliveryLbl    Key = "delivery_lbl"
	UnitSuffix     Key = "unit_suffix"
)

var lexicon = map[Lang]map[Key]string{
	LangUA: {
		StartMsg:    "👋 Вітаємо в магазині! Оберіть дію в меню:",
		SelectLang:  "🇺🇦 Будь ласка, оберіть мову:\n🇺🇸 Please select your language:",
		LangSet:     "✅ Мову встановлено: Українська",
		CurrencySet: "✅ Валюту встановлено: ",

		CatalogBtn:  "🛍 Каталог",
		CartBtn:     "🛒 Кошик",
		OrdersBtn:   "📦 Мої замовлення",
		InfoBtn:     "ℹ️ Інфо",
		SettingsBtn: "⚙️ Налаштування",
		AdminBtn:    "🔐 Адмін-панель",

		SettingsMenu:  "⚙️ <b>Меню налаштувань</b>\nОберіть, що хочете змінити:",
		ChangeLangBtn: "🌍 Змінити мову",
		ChangeCurrBtn: "💱 Змінити валюту",

		InfoMsg:   "🤖 Бот-магазин техніки v4.0",
		EmptyCat:  "У цій категорії поки немає товарів.",
		ChooseCat: "📂 Оберіть категорію:",
		CatLabel:  "📂 Категорія:",
		BackMenu:  "🔙 В меню",
		BackCats:  "🔙 Назад до категорій",
		AddCart:   "🛒 У кошик",
		AddedCart: "✅ Товар додано у кошик!",

		CartTitle:    "<b>🛒 Ваш кошик:</b>\n\n",
		CartEmpty:    "🛒 Кошик порожній.",
		CartClear:    "🗑 Очистити кошик",
		CartCheckout: "✅ Оформити замовлення",
		Cleared:      "🗑 Кошик очищено.",

		CheckoutName:   "✍️ Введіть ваше ім'я:",
		CheckoutPhone:  "📞 Введіть ваш номер телефону:",
		CheckoutAddr:   "📍 Введіть адресу доставки:",
		CheckoutMethod: "🚚 Оберіть спосіб доставки:",
		DeliveryStd:    "🚚 Стандарт (Безкоштовно)",
		DeliveryExp:    "🚀 Експрес",
		PhoneFormat:    "⚠️ Format: +380XXXXXXXXX",
		DeliveryPick:   "Будь ласка, оберіть спосіб доставки кнопкою.",

		CheckHeader:   "📋 ЧЕК:",
		CheckItems:    "📦 Товари:",
		CheckDelivery: "🚚 Доставка:",
		CheckTotal:    "💰 Всього:",
		CheckStd:      "Стандарт",
		CheckExp:      "Експрес",

		BackStep:  "🔙 Назад",
		Cancel:    "❌ Скасувати",
		Cancelled: "❌ Замовлення скасовано.",

		ConfirmBtn:   "✅ Підтвердити і оплатити",
		InvoiceTitle: "Замовлення в TechShop",
		InvoiceDesc:  "Оплата замовлення",
		InvoiceError: "⚠️ Не вдалося створити рахунок. Спробуйте пізніше.",
		SuccessPay:   "✅ <b>Оплата успішна!</b>\nЗамовлення #%d прийнято.",

		MyOrdersTitle: "📦 <b>Ваша історія замовлень:</b>\n\n",
		NoOrders:      "У вас поки немає замовлень.",

		OrderApproved: "🎉 Ваше замовлення #%d підтверджено і передано в доставку!",
		OrderRejected: "😔 Вибачте, замовлення #%d було скасовано адміністратором.",

		StatusPending:  "⏳ Очікується",
		StatusPaid:     "✅ Оплачено",
		StatusApproved: "✅ Підтверджено",
		StatusRejected: "❌ Скасовано",
		StatusLbl:      "Статус",
		TotalLbl:       "Сума",
		DeliveryLbl:    "Доставка",
		UnitSuffix:     "/шт",
	},
	LangEN: {
		StartMsg:    "👋 Welcome to the shop! Choose an action:",
		SelectLang:  "🇺🇸 Please select your language:",
		LangSet:     "✅ Language set: English",
		CurrencySet: "✅ Currency set: ",

		CatalogBtn:  "🛍 Catalog",
		CartBtn:     "🛒 Cart",
		OrdersBtn:   "📦 My Orders",
		InfoBtn:     "ℹ️ Info",
		SettingsBtn: "⚙️ Settings",
		AdminBtn:    "🔐 Admin Panel",

		SettingsMenu:  "⚙️ <b>Settings Menu</b>\nChoose what to change:",
		ChangeLangBtn: "🌍 Change Language",
		ChangeCurrBtn: "💱 Change Currency",

		InfoMsg:   "🤖 TechShop Bot v4.0",
		EmptyCat:  "No products in this category yet.",
		ChooseCat: "📂 Choose a category:",
		CatLabel:  "📂 Category:",
		BackMenu:  "🔙 Main Menu",
		BackCats:  "🔙 Back to Categories",
		AddCart:   "🛒 Add to Cart",
		AddedCart: "✅ Added to cart!",

		CartTitle:    "<b>🛒 Your Cart:</b>\n\n",
		CartEmpty:    "🛒 Cart is empty.",
		CartClear:    "🗑 Clear Cart",
		CartCheckout: "✅ Checkout",
		Cleared:      "🗑 Cart cleared.",

		CheckoutName:   "✍️ Enter your name:",
		CheckoutPhone:  "📞 Enter your phone number:",
		CheckoutAddr:   "📍 Enter delivery address:",
		CheckoutMethod: "🚚 Choose delivery method:",
		DeliveryStd:    "🚚 Standard (Free)",
		DeliveryExp:    "🚀 Express",
		PhoneFormat:    "⚠️ Format: +380XXXXXXXXX",
		DeliveryPick:   "Please choose a delivery method with a button.",

		CheckHeader:   "📋 CHECK:",
		CheckItems:    "📦 Items:",
		CheckDelivery: "🚚 Delivery:",
		CheckTotal:    "💰 Total:",
		CheckStd:      "Standard",
		CheckExp:      "Express",

		BackStep:  "🔙 Back",
		Cancel:    "❌ Cancel",
		Cancelled: "❌ Order cancelled.",

		ConfirmBtn:   "✅ Confirm & Pay",
		InvoiceTitle: "TechShop Order",
		InvoiceDesc:  "Order Payment",
		InvoiceError: "⚠️ Could not create the invoice. Please try again later.",
		SuccessPay:   "✅ <b>Payment successful!</b>\nOrder #%d accepted.",

		MyOrdersTitle: "📦 <b>Your Order History:</b>\n\n",
		NoOrders:      "You have no orders yet.",

		OrderApproved: "🎉 Your order #%d has been confirmed and shipped!",
		OrderRejected: "😔 Sorry, your order #%d has been cancelled by admin.",

		StatusPending:  "⏳ Pending",
		StatusPaid:     "✅ Paid",
		StatusApproved: "✅ Approved",
		StatusRejected: "❌ Cancelled",
		StatusLbl:      "Status",
		TotalLbl:       "Total price",
		DeliveryLbl:    "Delivery Method",
		UnitSuffix:     "/pcs",
	},
}

// categories maps catalog category keys to their display names per language.
var categories = map[Lang]map[string]string{
	LangUA: {
		"Laptops":     "Ноутбуки",
		"Smartphones": "Смартфони",
		"Tablets":     "Планшети",
		"Accessories": "Аксесуари",
		"Other":       "Інше",
	},
	LangEN: {
		"Laptops":     "Laptops",
		"Smartphones": "Smartphones",
		"Tablets":     "Tablets",
		"Accessories": "Accessories",
		"Other":       "Other",
	},
}

// Normalize maps an arbitrary language preference to a supported Lang.
func Normalize(lang string) Lang {
	switch Lang(lang) {
	case LangUA, LangEN:
		return Lang(lang)
	default:
		return Fallback
	}
}

// T returns the localized string for key, falling back to the Ukrainian table
// and finally to the key itself.
func T(lang Lang, key Key) string {
	if table, ok := lexicon[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	if s, ok := lexicon[Fallback][key]; ok {
		return s
	}
	return string(key)
}

// Category returns the localized display name for a catalog category key,
// keeping the raw key when no translation exists.
func Category(lang Lang, category string) string {
	if table, ok := categories[lang]; ok {
		if s, ok := table[category]; ok {
			return s
		}
	}
	if s, ok := categories[Fallback][category]; ok {
		return s
	}
	return category
}
