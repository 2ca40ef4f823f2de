package convo

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
)

func seedOrder(f *fakeRepo, userID int64, status repo.OrderStatus) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextOrderID++
	f.orders[f.nextOrderID] = repo.Order{
		ID:            f.nextOrderID,
		UserID:        userID,
		CustomerName:  "Alice",
		CustomerPhone: "+380501234567",
		ItemsText:     "iPhone 15 Pro x1",
		TotalPrice:    48000,
		CurrencyCode:  "UAH",
		Status:        status,
	}
	return f.nextOrderID
}

func TestAdminApproveOrder(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()
	orderID := seedOrder(repository, testUserID, repo.StatusPaid)

	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("approve_%d", orderID)))

	order, _ := repository.GetOrder(ctx, orderID)
	if order.Status != repo.StatusApproved {
		t.Errorf("order status = %q, want approved", order.Status)
	}

	userMsgs := sender.messagesTo(testUserID)
	if len(userMsgs) != 1 {
		t.Fatalf("user notifications = %d, want 1", len(userMsgs))
	}
	want := fmt.Sprintf(uaText(i18n.OrderApproved), orderID)
	if userMsgs[0].Text != want {
		t.Errorf("notification = %q, want %q", userMsgs[0].Text, want)
	}
}

func TestAdminDecisionIsIdempotent(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()
	orderID := seedOrder(repository, testUserID, repo.StatusPaid)
	data := fmt.Sprintf("reject_%d", orderID)

	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, data))
	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, data))

	order, _ := repository.GetOrder(ctx, orderID)
	if order.Status != repo.StatusRejected {
		t.Errorf("order status = %q, want rejected", order.Status)
	}
	if got := len(sender.messagesTo(testUserID)); got != 1 {
		t.Errorf("user notifications = %d, want 1", got)
	}

	last := sender.callbacks[len(sender.callbacks)-1]
	if !strings.Contains(last.Text, "already") || !last.ShowAlert {
		t.Errorf("second decision answer = %+v, want already-processed alert", last)
	}
}

func TestAdminDecisionOnMissingOrder(t *testing.T) {
	engine, _, sender := newTestEngine(t, nil)

	engine.ProcessUpdate(context.Background(), callbackUpdate(testAdminID, "approve_404"))

	if len(sender.callbacks) != 1 {
		t.Fatalf("callback answers = %d, want 1", len(sender.callbacks))
	}
	answer := sender.callbacks[0]
	if !strings.Contains(answer.Text, "not found") || !answer.ShowAlert {
		t.Errorf("answer = %+v, want not-found alert", answer)
	}
}

func TestAdminDecisionHidesButtonsWhenSettled(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()
	orderID := seedOrder(repository, testUserID, repo.StatusApproved)

	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("view_order_%d", orderID)))

	if len(sender.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(sender.edits))
	}
	markup := sender.edits[0].ReplyMarkup
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			if strings.HasPrefix(btn.CallbackData, "approve_") || strings.HasPrefix(btn.CallbackData, "reject_") {
				t.Errorf("decided order still shows decision button %q", btn.CallbackData)
			}
		}
	}
}

func TestNonAdminCannotDecide(t *testing.T) {
	engine, repository, _ := newTestEngine(t, nil)
	ctx := context.Background()
	orderID := seedOrder(repository, testUserID, repo.StatusPaid)

	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, fmt.Sprintf("approve_%d", orderID)))

	order, _ := repository.GetOrder(ctx, orderID)
	if order.Status != repo.StatusPaid {
		t.Errorf("order status = %q, want paid", order.Status)
	}
}

func TestAdminRejectNotifiesInUserLanguage(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()
	repository.SetUserLanguage(ctx, testUserID, "en")
	orderID := seedOrder(repository, testUserID, repo.StatusPaid)

	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("reject_%d", orderID)))

	userMsgs := sender.messagesTo(testUserID)
	if len(userMsgs) != 1 {
		t.Fatalf("user notifications = %d, want 1", len(userMsgs))
	}
	want := fmt.Sprintf(i18n.T(i18n.LangEN, i18n.OrderRejected), orderID)
	if userMsgs[0].Text != want {
		t.Errorf("notification = %q, want %q", userMsgs[0].Text, want)
	}
}

func TestAdminAddProductFlow(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()

	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "/add_item"))
	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "Steam Deck"))
	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "Other"))
	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "Handheld console"))

	// Non-numeric price is rejected and the step repeats.
	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "cheap"))
	if got := engine.session(testAdminID).state; got != StateAdminAddPrice {
		t.Fatalf("state after bad price = %v, want admin_add_price", got)
	}

	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "23000"))

	products, _ := repository.ListProducts(ctx)
	if len(products) != 1 {
		t.Fatalf("products = %d, want 1", len(products))
	}
	p := products[0]
	if p.Name != "Steam Deck" || p.Category != "Other" || p.Price != 23000 {
		t.Errorf("product = %+v", p)
	}
	if got := engine.session(testAdminID).state; got != StateIdle {
		t.Errorf("state = %v, want idle", got)
	}
	if !strings.Contains(sender.lastMessage(t).Text, "Steam Deck") {
		t.Errorf("confirmation = %q", sender.lastMessage(t).Text)
	}
}

func TestAdminRemoveProduct(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()
	productID := seedProduct(repository, "Old Gadget", "Other", 100)

	engine.ProcessUpdate(ctx, textUpdate(testAdminID, "/remove_item"))
	engine.ProcessUpdate(ctx, callbackUpdate(testAdminID, fmt.Sprintf("admin_del_%d", productID)))

	products, _ := repository.ListProducts(ctx)
	if len(products) != 0 {
		t.Errorf("products = %d, want 0", len(products))
	}
	if len(sender.callbacks) == 0 {
		t.Error("removal was not acknowledged")
	}
}
