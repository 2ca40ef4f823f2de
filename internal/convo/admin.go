package convo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
)

const adminOrdersLimit = 20

// Admin surfaces speak English only; the admin set is small and fixed.
func (e *Engine) handleAdminPanel(ctx context.Context, msg tg.Message) {
	if !e.isAdmin(msg.From.ID) {
		return
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID: msg.Chat.ID,
		Text: "🔐 <b>Admin Panel</b>\n\n" +
			"/orders — recent orders\n" +
			"/add_item — add a product\n" +
			"/remove_item — remove a product",
	})
}

func (e *Engine) handleAdminOrders(ctx context.Context, msg tg.Message, _ i18n.Lang) {
	if !e.isAdmin(msg.From.ID) {
		return
	}
	orders, err := e.repo.ListOrders(ctx, adminOrdersLimit)
	if err != nil {
		e.logger.Error("list orders failed", "error", err)
		return
	}
	if len(orders) == 0 {
		e.send(ctx, tg.SendMessageRequest{ChatID: msg.Chat.ID, Text: "No orders yet."})
		return
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      msg.Chat.ID,
		Text:        "📬 <b>Recent orders:</b>",
		ReplyMarkup: adminOrdersKeyboard(orders),
	})
}

func (e *Engine) handleAdminCallback(ctx context.Context, cb tg.CallbackQuery, _ i18n.Lang) {
	if !e.isAdmin(cb.From.ID) {
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	data := cb.Data
	switch {
	case data == "admin_refresh_orders" || data == "admin_back_orders":
		e.editAdminOrders(ctx, cb)
	case strings.HasPrefix(data, "view_order_"):
		e.showAdminOrder(ctx, cb, parseID(data, "view_order_"))
	case strings.HasPrefix(data, "approve_"):
		e.decideOrder(ctx, cb, parseID(data, "approve_"), repo.StatusApproved)
	case strings.HasPrefix(data, "reject_"):
		e.decideOrder(ctx, cb, parseID(data, "reject_"), repo.StatusRejected)
	case strings.HasPrefix(data, "admin_del_"):
		e.deleteProduct(ctx, cb, parseID(data, "admin_del_"))
	}
}

func (e *Engine) editAdminOrders(ctx context.Context, cb tg.CallbackQuery) {
	e.answerCallback(ctx, cb.ID, "", false)
	orders, err := e.repo.ListOrders(ctx, adminOrdersLimit)
	if err != nil {
		e.logger.Error("list orders failed", "error", err)
		return
	}
	if len(orders) == 0 {
		e.edit(ctx, cb, "No orders yet.", nil)
		return
	}
	markup := adminOrdersKeyboard(orders)
	e.edit(ctx, cb, "📬 <b>Recent orders:</b>", &markup)
}

func (e *Engine) showAdminOrder(ctx context.Context, cb tg.CallbackQuery, orderID int64) {
	order, err := e.repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			e.answerCallback(ctx, cb.ID, fmt.Sprintf("Order #%d not found.", orderID), true)
			return
		}
		e.logger.Error("get order failed", "order_id", orderID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, "", false)
	markup := adminOrderKeyboard(order)
	e.edit(ctx, cb, adminOrderText(order), &markup)
}

// decideOrder applies an approve or reject decision. The status update is
// conditional on the order still being decidable, so a second press or a
// concurrent decision is a clean no-op.
func (e *Engine) decideOrder(ctx context.Context, cb tg.CallbackQuery, orderID int64, status repo.OrderStatus) {
	updated, err := e.repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		e.logger.Error("update order status failed", "order_id", orderID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}

	order, getErr := e.repo.GetOrder(ctx, orderID)
	if getErr != nil {
		if errors.Is(getErr, repo.ErrNotFound) {
			e.answerCallback(ctx, cb.ID, fmt.Sprintf("Order #%d not found.", orderID), true)
			return
		}
		e.logger.Error("get order failed", "order_id", orderID, "error", getErr)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}

	if !updated {
		e.answerCallback(ctx, cb.ID, fmt.Sprintf("Order #%d is already %s.", orderID, order.Status), true)
		markup := adminOrderKeyboard(order)
		e.edit(ctx, cb, adminOrderText(order), &markup)
		return
	}

	if e.metrics != nil {
		decision := "approve"
		if status == repo.StatusRejected {
			decision = "reject"
		}
		e.metrics.AdminDecisions.WithLabelValues(decision).Inc()
	}
	e.logger.Info("order decided", "order_id", orderID, "status", status, "admin_id", cb.From.ID)

	e.answerCallback(ctx, cb.ID, fmt.Sprintf("Order #%d %s.", orderID, status), false)
	markup := adminOrderKeyboard(order)
	e.edit(ctx, cb, adminOrderText(order), &markup)
	e.notifyOrderDecision(ctx, order)
}

// notifyOrderDecision tells the purchaser about the outcome, in their own
// language. Delivery failure does not undo the decision.
func (e *Engine) notifyOrderDecision(ctx context.Context, order *repo.Order) {
	lang, _ := e.userConfig(ctx, order.UserID)
	key := i18n.OrderApproved
	if order.Status == repo.StatusRejected {
		key = i18n.OrderRejected
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID: order.UserID,
		Text:   fmt.Sprintf(i18n.T(lang, key), order.ID),
	})
}

func (e *Engine) startAdminAdd(ctx context.Context, sess *session, msg tg.Message) {
	if !e.isAdmin(msg.From.ID) {
		return
	}
	sess.adminDraft = adminProductDraft{}
	sess.state = StateAdminAddName
	e.send(ctx, tg.SendMessageRequest{ChatID: msg.Chat.ID, Text: "✍️ Product name:"})
}

func (e *Engine) handleAdminAddInput(ctx context.Context, sess *session, msg tg.Message, _ i18n.Lang) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	if text == "/cancel" {
		sess.state = StateIdle
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "Cancelled."})
		return
	}

	switch sess.state {
	case StateAdminAddName:
		sess.adminDraft.Name = text
		sess.state = StateAdminAddCategory
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "📂 Category (Laptops, Smartphones, Tablets, Accessories, Other):"})

	case StateAdminAddCategory:
		sess.adminDraft.Category = text
		sess.state = StateAdminAddDesc
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "📝 Description:"})

	case StateAdminAddDesc:
		sess.adminDraft.Description = text
		sess.state = StateAdminAddPrice
		e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "💰 Price in UAH (whole number):"})

	case StateAdminAddPrice:
		price, err := strconv.ParseInt(text, 10, 64)
		if err != nil || price <= 0 {
			e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "⚠️ Enter a positive whole number."})
			return
		}
		product, err := e.repo.InsertProduct(ctx, repo.Product{
			Name:        sess.adminDraft.Name,
			Category:    sess.adminDraft.Category,
			Description: sess.adminDraft.Description,
			Price:       price,
		})
		if err != nil {
			e.logger.Error("insert product failed", "error", err)
			e.send(ctx, tg.SendMessageRequest{ChatID: chatID, Text: "⚠️ Could not save the product."})
			sess.state = StateIdle
			return
		}
		sess.state = StateIdle
		e.send(ctx, tg.SendMessageRequest{
			ChatID: chatID,
			Text:   fmt.Sprintf("✅ Added <b>%s</b> (#%d) for %d UAH.", product.Name, product.ID, product.Price),
		})
	}
}

func (e *Engine) handleAdminRemoveList(ctx context.Context, msg tg.Message) {
	if !e.isAdmin(msg.From.ID) {
		return
	}
	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		e.logger.Error("list products failed", "error", err)
		return
	}
	if len(products) == 0 {
		e.send(ctx, tg.SendMessageRequest{ChatID: msg.Chat.ID, Text: "The catalog is empty."})
		return
	}
	e.send(ctx, tg.SendMessageRequest{
		ChatID:      msg.Chat.ID,
		Text:        "🗑 <b>Pick a product to remove:</b>",
		ReplyMarkup: adminRemoveKeyboard(products),
	})
}

func (e *Engine) deleteProduct(ctx context.Context, cb tg.CallbackQuery, productID int64) {
	if err := e.repo.DeleteProduct(ctx, productID); err != nil {
		e.logger.Error("delete product failed", "product_id", productID, "error", err)
		e.answerCallback(ctx, cb.ID, "", false)
		return
	}
	e.answerCallback(ctx, cb.ID, fmt.Sprintf("Product #%d removed.", productID), false)
	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		e.logger.Error("list products failed", "error", err)
		return
	}
	if len(products) == 0 {
		e.edit(ctx, cb, "The catalog is empty.", nil)
		return
	}
	markup := adminRemoveKeyboard(products)
	e.edit(ctx, cb, "🗑 <b>Pick a product to remove:</b>", &markup)
}
