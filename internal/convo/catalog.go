package convo

import (
	"context"

	"techshop-bot/internal/currency"
	"techshop-bot/internal/i18n"
	"techshop-bot/internal/tg"
)

func (e *Engine) handleStart(ctx context.Context, msg tg.Message) {
	userID := msg.From.ID
	if err := e.repo.EnsureUser(ctx, userID); err != nil {
		e.logger.Error("ensure user failed", "user_id", userID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_user").Inc()
		}
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      msg.Chat.ID,
		Text:        i18n.T(i18n.Fallback, i18n.SelectLang),
		ReplyMarkup: languageKeyboard(),
	})
}

// edit rewrites the message a callback originated from, falling back to a
// fresh message when the original is unavailable.
func (e *Engine) edit(ctx context.Context, cb tg.CallbackQuery, text string, markup *tg.InlineKeyboardMarkup) {
	if cb.Message == nil {
		req := tg.SendMessageRequest{ChatID: cb.From.ID, Text: text}
		if markup != nil {
			req.ReplyMarkup = *markup
		}
		e.send(ctx, req)
		return
	}
	err := e.sender.EditMessageText(ctx, tg.EditMessageTextRequest{
		ChatID:      cb.Message.Chat.ID,
		MessageID:   cb.Message.MessageID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
	if err != nil {
		e.logger.Warn("edit message failed", "chat_id", cb.Message.Chat.ID, "error", err)
	}
}

func (e *Engine) setLanguage(ctx context.Context, cb tg.CallbackQuery, lang string) {
	userID := cb.From.ID
	normalized := i18n.Normalize(lang)
	if err := e.repo.SetUserLanguage(ctx, userID, string(normalized)); err != nil {
		e.logger.Error("set language failed", "user_id", userID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, i18n.T(normalized, i18n.LangSet), false)
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatOf(cb),
		Text:        i18n.T(normalized, i18n.StartMsg),
		ReplyMarkup: mainMenuKeyboard(normalized, e.isAdmin(userID)),
	})
}

func (e *Engine) setCurrency(ctx context.Context, cb tg.CallbackQuery, curr string) {
	userID := cb.From.ID
	if !currency.Supported(currency.Code(curr)) {
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	if err := e.repo.SetUserCurrency(ctx, userID, curr); err != nil {
		e.logger.Error("set currency failed", "user_id", userID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	lang, _ := e.userConfig(ctx, userID)
	e.answerCallback(ctx, cb.ID, i18n.T(lang, i18n.CurrencySet)+curr, false)
	e.edit(ctx, cb, i18n.T(lang, i18n.CurrencySet)+curr, nil)
}

func (e *Engine) showSettings(ctx context.Context, chatID, userID int64) {
	lang, _ := e.userConfig(ctx, userID)
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatID,
		Text:        i18n.T(lang, i18n.SettingsMenu),
		ReplyMarkup: settingsKeyboard(lang),
	})
}

func (e *Engine) showLangSelection(ctx context.Context, cb tg.CallbackQuery) {
	e.answerCallback(ctx, cb.ID, "", false)
	markup := languageKeyboard()
	e.edit(ctx, cb, i18n.T(i18n.Fallback, i18n.SelectLang), &markup)
}

func (e *Engine) showCurrencySelection(ctx context.Context, cb tg.CallbackQuery) {
	lang, _ := e.userConfig(ctx, cb.From.ID)
	e.answerCallback(ctx, cb.ID, "", false)
	markup := currencyKeyboard()
	e.edit(ctx, cb, i18n.T(lang, i18n.ChangeCurrBtn), &markup)
}

func (e *Engine) showInfo(ctx context.Context, chatID, userID int64) {
	lang, _ := e.userConfig(ctx, userID)
	e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.InfoMsg)})
}

func (e *Engine) showCategories(ctx context.Context, chatID, userID int64) {
	lang, _ := e.userConfig(ctx, userID)
	cats, err := e.repo.ListCategories(ctx)
	if err != nil {
		e.logger.Error("list categories failed", "error", err)
		return
	}
	if len(cats) == 0 {
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.EmptyCat)})
		return
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatID,
		Text:        i18n.T(lang, i18n.ChooseCat),
		ReplyMarkup: categoriesKeyboard(lang, cats),
	})
}

// editCategories re-renders the category list in place of the pressed
// message. Used by both back_to_cats and back_to_menu.
func (e *Engine) editCategories(ctx context.Context, cb tg.CallbackQuery, userID int64) {
	lang, _ := e.userConfig(ctx, userID)
	e.answerCallback(ctx, cb.ID, "", false)
	cats, err := e.repo.ListCategories(ctx)
	if err != nil {
		e.logger.Error("list categories failed", "error", err)
		return
	}
	if len(cats) == 0 {
		e.edit(ctx, cb, i18n.T(lang, i18n.EmptyCat), nil)
		return
	}
	markup := categoriesKeyboard(lang, cats)
	e.edit(ctx, cb, i18n.T(lang, i18n.ChooseCat), &markup)
}

func (e *Engine) showCategoryProducts(ctx context.Context, cb tg.CallbackQuery, category string, lang i18n.Lang, curr string) {
	e.answerCallback(ctx, cb.ID, "", false)
	products, err := e.repo.ListProductsByCategory(ctx, category)
	if err != nil {
		e.logger.Error("list products failed", "category", category, "error", err)
		return
	}
	if len(products) == 0 {
		e.edit(ctx, cb, i18n.T(lang, i18n.EmptyCat), nil)
		return
	}
	markup := productsKeyboard(lang, curr, products)
	text := i18n.T(lang, i18n.CatLabel) + " " + i18n.Category(lang, category)
	e.edit(ctx, cb, text, &markup)
}

func (e *Engine) showProductDetail(ctx context.Context, cb tg.CallbackQuery, productID int64, lang i18n.Lang, curr string) {
	e.answerCallback(ctx, cb.ID, "", false)
	product, err := e.repo.GetProduct(ctx, productID)
	if err != nil {
		e.logger.Warn("get product failed", "product_id", productID, "error", err)
		return
	}
	markup := productDetailKeyboard(lang, product.ID)
	e.edit(ctx, cb, productText(lang, curr, product), &markup)
}

func (e *Engine) addToCart(ctx context.Context, cb tg.CallbackQuery, productID int64, lang i18n.Lang) {
	userID := cb.From.ID
	if err := e.repo.AddToCart(ctx, userID, productID); err != nil {
		e.logger.Error("add to cart failed", "user_id", userID, "product_id", productID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, i18n.T(lang, i18n.AddedCart), false)
}

func (e *Engine) showCart(ctx context.Context, chatID, userID int64) {
	lang, curr := e.userConfig(ctx, userID)
	lines, err := e.repo.GetCart(ctx, userID)
	if err != nil {
		e.logger.Error("get cart failed", "user_id", userID, "error", err)
		return
	}
	if len(lines) == 0 {
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.CartEmpty)})
		return
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatID,
		Text:        cartText(lang, curr, lines),
		ReplyMarkup: cartKeyboard(lang, lines),
	})
}

func (e *Engine) removeCartLine(ctx context.Context, cb tg.CallbackQuery, lineID int64, lang i18n.Lang, curr string) {
	userID := cb.From.ID
	if err := e.repo.RemoveCartLine(ctx, lineID); err != nil {
		e.logger.Error("remove cart line failed", "line_id", lineID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, "", false)
	lines, err := e.repo.GetCart(ctx, userID)
	if err != nil {
		e.logger.Error("get cart failed", "user_id", userID, "error", err)
		return
	}
	if len(lines) == 0 {
		e.edit(ctx, cb, i18n.T(lang, i18n.CartEmpty), nil)
		return
	}
	markup := cartKeyboard(lang, lines)
	e.edit(ctx, cb, cartText(lang, curr, lines), &markup)
}

func (e *Engine) clearCart(ctx context.Context, cb tg.CallbackQuery, lang i18n.Lang) {
	userID := cb.From.ID
	if err := e.repo.ClearCart(ctx, userID); err != nil {
		e.logger.Error("clear cart failed", "user_id", userID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, "", false)
	e.edit(ctx, cb, i18n.T(lang, i18n.Cleared), nil)
}

func (e *Engine) showMyOrders(ctx context.Context, chatID, userID int64) {
	lang, _ := e.userConfig(ctx, userID)
	orders, err := e.repo.ListUserOrders(ctx, userID)
	if err != nil {
		e.logger.Error("list user orders failed", "user_id", userID, "error", err)
		return
	}
	if len(orders) == 0 {
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.NoOrders)})
		return
	}
	e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: myOrdersText(lang, orders)})
}

func chatOf(cb tg.CallbackQuery) int64 {
	if cb.Message != nil {
		return cb.Message.Chat.ID
	}
	return cb.From.ID
}
