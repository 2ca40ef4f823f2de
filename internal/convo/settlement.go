package convo

import (
	"context"
	"fmt"

	"techshop-bot/internal/currency"
	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
)

// handlePreCheckout approves the provider's pre-authorization. Approval is
// unconditional; a totals mismatch against the known draft is logged but
// does not block the charge, the settled order always carries the frozen
// draft amounts.
func (e *Engine) handlePreCheckout(ctx context.Context, sess *session, q tg.PreCheckoutQuery) {
	if sess.draft.PayloadRef == q.InvoicePayload {
		expected := currency.MinorUnits(sess.draft.TotalDisplay)
		if q.TotalAmount != expected || q.Currency != sess.draft.Currency {
			e.logger.Warn("pre-checkout totals mismatch",
				"user_id", q.From.ID,
				"payload", q.InvoicePayload,
				"got_amount", q.TotalAmount, "want_amount", expected,
				"got_currency", q.Currency, "want_currency", sess.draft.Currency)
		}
	}
	err := e.sender.AnswerPreCheckoutQuery(ctx, tg.AnswerPreCheckoutQueryRequest{
		PreCheckoutQueryID: q.ID,
		OK:                 true,
	})
	if err != nil {
		e.logger.Error("answer pre-checkout failed", "user_id", q.From.ID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_precheckout").Inc()
		}
	}
}

// resolveDraft finds the frozen draft for a payment payload, preferring the
// in-memory session and falling back to the persisted copy.
func (e *Engine) resolveDraft(ctx context.Context, sess *session, payload string) (checkoutDraft, bool) {
	if payload != "" && sess.draft.PayloadRef == payload && sess.state == StateAwaitingPayment {
		return sess.draft, true
	}
	if e.drafts == nil || payload == "" {
		return checkoutDraft{}, false
	}
	var draft checkoutDraft
	found, err := e.drafts.GetJSON(ctx, draftKeyPrefix+payload, &draft)
	if err != nil {
		e.logger.Error("load persisted draft failed", "payload", payload, "error", err)
		return checkoutDraft{}, false
	}
	return draft, found
}

// handleSuccessfulPayment settles a confirmed payment exactly once. The
// draft is consumed on settlement, so a replayed confirmation finds no
// draft and becomes a logged no-op.
func (e *Engine) handleSuccessfulPayment(ctx context.Context, sess *session, msg tg.Message) {
	userID := msg.From.ID
	payment := msg.SuccessfulPayment
	lang, _ := e.userConfig(ctx, userID)

	draft, ok := e.resolveDraft(ctx, sess, payment.InvoicePayload)
	if !ok {
		e.logger.Info("payment confirmation without a draft, ignoring",
			"user_id", userID, "payload", payment.InvoicePayload)
		return
	}

	order, err := e.repo.SettleOrder(ctx, repo.OrderDraft{
		UserID:         userID,
		CustomerName:   draft.Name,
		CustomerPhone:  draft.Phone,
		CustomerAddr:   draft.Address,
		DeliveryMethod: draft.Delivery,
		ItemsText:      draft.ItemsText,
		TotalPrice:     draft.TotalDisplay,
		CurrencyCode:   draft.Currency,
		Status:         repo.StatusPaid,
	})
	if err != nil {
		e.logger.Error("settle order failed", "user_id", userID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_settle").Inc()
		}
		return
	}
	if e.metrics != nil {
		e.metrics.OrdersSettled.Inc()
	}
	e.logger.Info("order settled",
		"order_id", order.ID, "user_id", userID,
		"total", order.TotalPrice, "currency", order.CurrencyCode,
		"charge_id", payment.TelegramPaymentChargeID)

	// Consume the draft. The persisted copy goes first so a replay cannot
	// resolve it again; the session reset releases the checkout chain.
	if e.drafts != nil {
		if err := e.drafts.Delete(ctx, draftKeyPrefix+draft.PayloadRef); err != nil {
			e.logger.Warn("delete persisted draft failed", "payload", draft.PayloadRef, "error", err)
		}
	}
	if sess.draft.PayloadRef == draft.PayloadRef {
		sess.draft.PayloadRef = ""
		sess.draft.ItemsText = ""
		sess.draft.TotalUAH = 0
		sess.draft.TotalDisplay = 0
		sess.draft.Delivery = ""
		sess.state = StateIdle
	}

	e.send(ctx, tg.SendMessageRequest{
		ChatID:      msg.Chat.ID,
		Text:        fmt.Sprintf(i18n.T(lang, i18n.SuccessPay), order.ID),
		ReplyMarkup: mainMenuKeyboard(lang, e.isAdmin(userID)),
	})
	e.notifyAdmins(ctx, order)
}

// notifyAdmins fans the settled order out to every configured admin. Each
// delivery failure is logged on its own and never affects the others.
func (e *Engine) notifyAdmins(ctx context.Context, order *repo.Order) {
	markup := adminOrderKeyboard(order)
	for _, adminID := range e.cfg.AdminIDs {
		_, err := e.sender.SendMessage(ctx, tg.SendMessageRequest{
			ChatID:      adminID,
			Text:        "🔔 New paid order\n\n" + adminOrderText(order),
			ParseMode:   "HTML",
			ReplyMarkup: markup,
		})
		if err != nil {
			e.logger.Error("notify admin failed", "admin_id", adminID, "order_id", order.ID, "error", err)
			if e.metrics != nil {
				e.metrics.Errors.WithLabelValues("convo_notify").Inc()
			}
		}
	}
}
