package convo

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"techshop-bot/internal/currency"
	"techshop-bot/internal/i18n"
	"techshop-bot/internal/tg"
)

var phoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)

const draftKeyPrefix = "order_draft:"

func (e *Engine) checkoutEvent(event string) {
	if e.metrics != nil {
		e.metrics.CheckoutEvents.WithLabelValues(event).Inc()
	}
}

// startCheckout enters the checkout chain from the cart keyboard. Fields
// entered during an earlier abandoned checkout are kept as the draft base;
// the frozen snapshot is always rebuilt.
func (e *Engine) startCheckout(ctx context.Context, sess *session, cb tg.CallbackQuery, lang i18n.Lang) {
	userID := cb.From.ID
	lines, err := e.repo.GetCart(ctx, userID)
	if err != nil {
		e.logger.Error("get cart failed", "user_id", userID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	if len(lines) == 0 {
		e.answerCallback(ctx, cb.ID, i18n.T(lang, i18n.CartEmpty), true)
		return
	}

	sess.draft.ItemsText = ""
	sess.draft.TotalUAH = 0
	sess.draft.TotalDisplay = 0
	sess.draft.Delivery = ""
	sess.draft.PayloadRef = ""
	sess.state = StateCollectingName
	e.checkoutEvent("started")

	e.answerCallback(ctx, cb.ID, "", false)
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatOf(cb),
		Text:        i18n.T(lang, i18n.CheckoutName),
		ReplyMarkup: checkoutStepKeyboard(lang, false),
	})
}

func (e *Engine) handleCheckoutInput(ctx context.Context, sess *session, msg tg.Message, lang i18n.Lang, curr string) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	// Once the invoice is out the flow waits on the payment provider;
	// stray text cannot cancel or rewind it.
	if sess.state == StateAwaitingPayment {
		return
	}

	if isButton(text, i18n.Cancel) && sess.state.cancellable() {
		e.cancelCheckout(ctx, sess, chatID, msg.From.ID, lang)
		return
	}
	if isButton(text, i18n.BackStep) {
		prev, ok := sess.state.previous()
		if !ok {
			// Back on the first step leaves the flow entirely.
			e.cancelCheckout(ctx, sess, chatID, msg.From.ID, lang)
			return
		}
		sess.state = prev
		e.checkoutEvent("back")
		e.promptStep(ctx, sess, chatID, lang)
		return
	}

	switch sess.state {
	case StateCollectingName:
		sess.draft.Name = text
		sess.state = StateCollectingPhone
		e.promptStep(ctx, sess, chatID, lang)

	case StateCollectingPhone:
		if !phoneRe.MatchString(text) {
			e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.PhoneFormat)})
			return
		}
		sess.draft.Phone = text
		sess.state = StateCollectingAddress
		e.promptStep(ctx, sess, chatID, lang)

	case StateCollectingAddress:
		sess.draft.Address = text
		sess.state = StateSelectingDelivery
		e.promptStep(ctx, sess, chatID, lang)

	case StateSelectingDelivery:
		var method string
		switch {
		case isButton(text, i18n.DeliveryStd):
			method = DeliveryStandard
		case isButton(text, i18n.DeliveryExp):
			method = DeliveryExpress
		default:
			e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: i18n.T(lang, i18n.DeliveryPick)})
			return
		}
		e.freezeOrder(ctx, sess, msg.From.ID, chatID, method, lang, curr)

	case StateAwaitingConfirmation:
		if isButton(text, i18n.ConfirmBtn) {
			e.sendCheckoutInvoice(ctx, sess, msg.From.ID, chatID, lang)
			return
		}
		// Anything else re-shows the receipt.
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        checkText(lang, sess.draft),
			ReplyMarkup: confirmationKeyboard(lang),
		})
	}
}

func (e *Engine) cancelCheckout(ctx context.Context, sess *session, chatID, userID int64, lang i18n.Lang) {
	sess.state = StateIdle
	e.checkoutEvent("cancelled")
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatID,
		Text:        i18n.T(lang, i18n.Cancelled),
		ReplyMarkup: mainMenuKeyboard(lang, e.isAdmin(userID)),
	})
}

// promptStep sends the prompt for the session's current step. Used both for
// forward transitions and for back navigation.
func (e *Engine) promptStep(ctx context.Context, sess *session, chatID int64, lang i18n.Lang) {
	switch sess.state {
	case StateCollectingName:
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.CheckoutName),
			ReplyMarkup: checkoutStepKeyboard(lang, false),
		})
	case StateCollectingPhone:
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.CheckoutPhone),
			ReplyMarkup: checkoutStepKeyboard(lang, true),
		})
	case StateCollectingAddress:
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.CheckoutAddr),
			ReplyMarkup: checkoutStepKeyboard(lang, true),
		})
	case StateSelectingDelivery:
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.CheckoutMethod),
			ReplyMarkup: deliveryKeyboard(lang),
		})
	}
}

// freezeOrder re-reads the cart at delivery selection, snapshots the item
// lines and the totals into the draft, and advances to confirmation. The
// snapshot is what gets settled; later cart edits do not touch it.
func (e *Engine) freezeOrder(ctx context.Context, sess *session, userID, chatID int64, method string, lang i18n.Lang, curr string) {
	lines, err := e.repo.GetCart(ctx, userID)
	if err != nil {
		e.logger.Error("get cart failed", "user_id", userID, "error", err)
		return
	}
	if len(lines) == 0 {
		// Cart was emptied from another surface while checkout progressed.
		sess.state = StateIdle
		e.checkoutEvent("aborted_empty_cart")
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.CartEmpty),
			ReplyMarkup: mainMenuKeyboard(lang, e.isAdmin(userID)),
		})
		return
	}

	totalUAH, _ := cartTotals(lines, curr)
	if method == DeliveryExpress {
		totalUAH += expressSurchargeUAH
	}
	sess.draft.Delivery = method
	sess.draft.ItemsText = itemsSnapshot(lines)
	sess.draft.TotalUAH = totalUAH
	sess.draft.Currency = curr
	sess.draft.TotalDisplay = currency.Convert(totalUAH, currency.Code(curr))
	sess.state = StateAwaitingConfirmation

	e.send(ctx, tg.SendMessageRequest{
		ChatID:      chatID,
		Text:        checkText(lang, sess.draft),
		ReplyMarkup: confirmationKeyboard(lang),
	})
}

// sendCheckoutInvoice issues the payment invoice and parks the session at
// AwaitingPayment. The draft is persisted under its payload reference so a
// confirmed payment can settle even after a restart. A failed invoice send
// aborts the whole flow back to idle.
func (e *Engine) sendCheckoutInvoice(ctx context.Context, sess *session, userID, chatID int64, lang i18n.Lang) {
	sess.draft.PayloadRef = uuid.NewString()

	if e.drafts != nil {
		key := draftKeyPrefix + sess.draft.PayloadRef
		if err := e.drafts.SetJSON(ctx, key, sess.draft, e.cfg.DraftTTL); err != nil {
			e.logger.Warn("persist checkout draft failed", "error", err)
		}
	}

	amount := currency.MinorUnits(sess.draft.TotalDisplay)
	err := e.sender.SendInvoice(ctx, tg.SendInvoiceRequest{
		ChatID:        chatID,
		Title:         i18n.T(lang, i18n.InvoiceTitle),
		Description:   i18n.T(lang, i18n.InvoiceDesc),
		Payload:       sess.draft.PayloadRef,
		ProviderToken: e.cfg.PaymentToken,
		Currency:      sess.draft.Currency,
		Prices: []tg.LabeledPrice{
			{Label: i18n.T(lang, i18n.InvoiceTitle), Amount: amount},
		},
	})
	if err != nil {
		e.logger.Error("send invoice failed", "chat_id", chatID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_invoice").Inc()
		}
		sess.state = StateIdle
		sess.draft.PayloadRef = ""
		e.checkoutEvent("invoice_error")
		e.send(ctx, tg.SendMessageRequest{
			ChatID:      chatID,
			Text:        i18n.T(lang, i18n.InvoiceError),
			ReplyMarkup: mainMenuKeyboard(lang, e.isAdmin(userID)),
		})
		return
	}
	sess.state = StateAwaitingPayment
	e.checkoutEvent("invoice_sent")
}
