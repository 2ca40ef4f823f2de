package convo

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"techshop-bot/internal/i18n"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
)

// fakeRepo is an in-memory Repository for engine tests.
type fakeRepo struct {
	mu sync.Mutex

	users    map[int64][2]string // lang, currency
	products map[int64]repo.Product
	cart     map[int64][]repo.CartLine
	orders   map[int64]repo.Order

	nextLineID  int64
	nextOrderID int64

	settleCalls int
	settleErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[int64][2]string),
		products: make(map[int64]repo.Product),
		cart:     make(map[int64][]repo.CartLine),
		orders:   make(map[int64]repo.Order),
	}
}

func (f *fakeRepo) Close()                                     {}
func (f *fakeRepo) Ping(context.Context) error                 { return nil }
func (f *fakeRepo) RunMigrations(context.Context, fs.FS) error { return nil }

func (f *fakeRepo) EnsureUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		f.users[id] = [2]string{"ua", "UAH"}
	}
	return nil
}

func (f *fakeRepo) GetUserSettings(_ context.Context, id int64) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.users[id]; ok {
		return s[0], s[1], nil
	}
	return "ua", "UAH", nil
}

func (f *fakeRepo) SetUserLanguage(_ context.Context, id int64, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.users[id]
	if s[1] == "" {
		s[1] = "UAH"
	}
	s[0] = lang
	f.users[id] = s
	return nil
}

func (f *fakeRepo) SetUserCurrency(_ context.Context, id int64, curr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.users[id]
	if s[0] == "" {
		s[0] = "ua"
	}
	s[1] = curr
	f.users[id] = s
	return nil
}

func (f *fakeRepo) ListCategories(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var cats []string
	for _, p := range f.products {
		if !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

func (f *fakeRepo) ListProducts(context.Context) ([]repo.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repo.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ListProductsByCategory(_ context.Context, cat string) ([]repo.Product, error) {
	all, _ := f.ListProducts(context.Background())
	var out []repo.Product
	for _, p := range all {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetProduct(_ context.Context, id int64) (*repo.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, repo.ErrNotFound)
	}
	return &p, nil
}

func (f *fakeRepo) InsertProduct(_ context.Context, p repo.Product) (*repo.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = int64(len(f.products) + 1)
	f.products[p.ID] = p
	return &p, nil
}

func (f *fakeRepo) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeRepo) AddToCart(_ context.Context, userID, productID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return fmt.Errorf("product %d: %w", productID, repo.ErrNotFound)
	}
	lines := f.cart[userID]
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity++
			f.cart[userID] = lines
			return nil
		}
	}
	f.nextLineID++
	f.cart[userID] = append(lines, repo.CartLine{
		ID: f.nextLineID, UserID: userID, ProductID: productID,
		Name: p.Name, Price: p.Price, Quantity: 1,
	})
	return nil
}

func (f *fakeRepo) GetCart(_ context.Context, userID int64) ([]repo.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]repo.CartLine(nil), f.cart[userID]...), nil
}

func (f *fakeRepo) RemoveCartLine(_ context.Context, lineID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for userID, lines := range f.cart {
		for i, line := range lines {
			if line.ID == lineID {
				f.cart[userID] = append(lines[:i], lines[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeRepo) ClearCart(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cart, userID)
	return nil
}

func (f *fakeRepo) SettleOrder(_ context.Context, draft repo.OrderDraft) (*repo.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settleCalls++
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	f.nextOrderID++
	order := repo.Order{
		ID:             f.nextOrderID,
		UserID:         draft.UserID,
		CustomerName:   draft.CustomerName,
		CustomerPhone:  draft.CustomerPhone,
		CustomerAddr:   draft.CustomerAddr,
		DeliveryMethod: draft.DeliveryMethod,
		ItemsText:      draft.ItemsText,
		TotalPrice:     draft.TotalPrice,
		CurrencyCode:   draft.CurrencyCode,
		Status:         draft.Status,
		CreatedAt:      time.Now(),
	}
	f.orders[order.ID] = order
	delete(f.cart, draft.UserID)
	return &order, nil
}

func (f *fakeRepo) GetOrder(_ context.Context, id int64) (*repo.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, repo.ErrNotFound)
	}
	return &o, nil
}

func (f *fakeRepo) UpdateOrderStatus(_ context.Context, id int64, status repo.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || !o.Status.Decidable() {
		return false, nil
	}
	o.Status = status
	f.orders[id] = o
	return true, nil
}

func (f *fakeRepo) ListOrders(_ context.Context, limit int) ([]repo.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repo.Order
	for _, o := range f.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListUserOrders(_ context.Context, userID int64) ([]repo.Order, error) {
	all, _ := f.ListOrders(context.Background(), 0)
	var out []repo.Order
	for _, o := range all {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

// fakeSender records outbound traffic.
type fakeSender struct {
	mu        sync.Mutex
	messages  []tg.SendMessageRequest
	edits     []tg.EditMessageTextRequest
	callbacks []tg.AnswerCallbackQueryRequest
	invoices  []tg.SendInvoiceRequest
	precheck  []tg.AnswerPreCheckoutQueryRequest

	invoiceErr error
	sendErr    map[int64]error // per chat
}

func (f *fakeSender) SendMessage(_ context.Context, req tg.SendMessageRequest) (*tg.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[req.ChatID]; err != nil {
		return nil, err
	}
	f.messages = append(f.messages, req)
	return &tg.Message{MessageID: int64(len(f.messages))}, nil
}

func (f *fakeSender) EditMessageText(_ context.Context, req tg.EditMessageTextRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, req)
	return nil
}

func (f *fakeSender) AnswerCallbackQuery(_ context.Context, req tg.AnswerCallbackQueryRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callbacks = append(f.callbacks, req)
	return nil
}

func (f *fakeSender) SendInvoice(_ context.Context, req tg.SendInvoiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invoiceErr != nil {
		return f.invoiceErr
	}
	f.invoices = append(f.invoices, req)
	return nil
}

func (f *fakeSender) AnswerPreCheckoutQuery(_ context.Context, req tg.AnswerPreCheckoutQueryRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.precheck = append(f.precheck, req)
	return nil
}

func (f *fakeSender) lastMessage(t *testing.T) tg.SendMessageRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no messages sent")
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeSender) messagesTo(chatID int64) []tg.SendMessageRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tg.SendMessageRequest
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// fakeDrafts is an in-memory DraftStore.
type fakeDrafts struct {
	mu    sync.Mutex
	items map[string]checkoutDraft
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{items: make(map[string]checkoutDraft)}
}

func (f *fakeDrafts) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value.(checkoutDraft)
	return nil
}

func (f *fakeDrafts) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft, ok := f.items[key]
	if !ok {
		return false, nil
	}
	*dest.(*checkoutDraft) = draft
	return true, nil
}

func (f *fakeDrafts) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	return nil
}

const (
	testUserID  = int64(1001)
	testAdminID = int64(9001)
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, store DraftStore) (*Engine, *fakeRepo, *fakeSender) {
	t.Helper()
	repository := newFakeRepo()
	sender := &fakeSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := New(repository, sender, store, nil, logger, EngineConfig{
		AdminIDs:     []int64{testAdminID},
		PaymentToken: "test-provider-token",
	})
	return engine, repository, sender
}

func seedProduct(f *fakeRepo, name, category string, price int64) int64 {
	p, _ := f.InsertProduct(context.Background(), repo.Product{
		Name: name, Category: category, Price: price, Description: "test",
	})
	return p.ID
}

func textUpdate(userID int64, text string) tg.Update {
	return tg.Update{Message: &tg.Message{
		From: &tg.User{ID: userID},
		Chat: tg.Chat{ID: userID},
		Text: text,
	}}
}

func callbackUpdate(userID int64, data string) tg.Update {
	return tg.Update{CallbackQuery: &tg.CallbackQuery{
		ID:   "cb",
		From: tg.User{ID: userID},
		Message: &tg.Message{
			MessageID: 1,
			Chat:      tg.Chat{ID: userID},
		},
		Data: data,
	}}
}

func uaText(key i18n.Key) string {
	return i18n.T(i18n.LangUA, key)
}

func TestStartSendsLanguagePrompt(t *testing.T) {
	engine, _, sender := newTestEngine(t, nil)
	ctx := context.Background()

	engine.ProcessUpdate(ctx, textUpdate(testUserID, "/start"))

	msg := sender.lastMessage(t)
	if !strings.Contains(msg.Text, "select your language") {
		t.Errorf("start reply = %q, want language prompt", msg.Text)
	}
	if _, ok := msg.ReplyMarkup.(tg.InlineKeyboardMarkup); !ok {
		t.Errorf("start reply markup = %T, want inline keyboard", msg.ReplyMarkup)
	}
}

func TestSetLanguageShowsMainMenu(t *testing.T) {
	engine, repository, sender := newTestEngine(t, nil)
	ctx := context.Background()

	engine.ProcessUpdate(ctx, textUpdate(testUserID, "/start"))
	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, "setlang_en"))

	lang, _, _ := repository.GetUserSettings(ctx, testUserID)
	if lang != "en" {
		t.Errorf("stored language = %q, want en", lang)
	}
	msg := sender.lastMessage(t)
	if msg.Text != i18n.T(i18n.LangEN, i18n.StartMsg) {
		t.Errorf("menu text = %q", msg.Text)
	}
}

func TestAddToCartUpserts(t *testing.T) {
	engine, repository, _ := newTestEngine(t, nil)
	ctx := context.Background()
	productID := seedProduct(repository, "MacBook Pro 16", "Laptops", 95000)

	data := fmt.Sprintf("add_cart_%d", productID)
	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, data))
	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, data))

	lines, _ := repository.GetCart(ctx, testUserID)
	if len(lines) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", lines[0].Quantity)
	}
}

func TestUnknownCallbackIsAcknowledged(t *testing.T) {
	engine, _, sender := newTestEngine(t, nil)

	engine.ProcessUpdate(context.Background(), callbackUpdate(testUserID, "bogus_data"))

	if len(sender.callbacks) != 1 {
		t.Fatalf("callback answers = %d, want 1", len(sender.callbacks))
	}
}

// serializingSender flags any two overlapping sends; with one user every
// send happens under that user's session lock, so overlap means the
// actor-per-user guarantee is broken.
type serializingSender struct {
	*fakeSender
	active  atomic.Int32
	overlap atomic.Bool
}

func (s *serializingSender) SendMessage(ctx context.Context, req tg.SendMessageRequest) (*tg.Message, error) {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.active.Add(-1)
	time.Sleep(time.Millisecond)
	return s.fakeSender.SendMessage(ctx, req)
}

func TestProcessUpdateSerializesPerUser(t *testing.T) {
	repository := newFakeRepo()
	sender := &serializingSender{fakeSender: &fakeSender{}}
	engine := New(repository, sender, nil, nil, slogDiscard(), EngineConfig{
		AdminIDs: []int64{testAdminID},
	})
	ctx := context.Background()
	productID := seedProduct(repository, "iPad Air 5", "Tablets", 25000)
	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, fmt.Sprintf("add_cart_%d", productID)))
	engine.ProcessUpdate(ctx, callbackUpdate(testUserID, "checkout_start"))

	// Race checkout inputs against cancels and backs, the way the polling
	// loop dispatches updates on separate goroutines.
	inputs := []string{"Alice", uaText(i18n.Cancel), "+380501234567", uaText(i18n.BackStep), "Bob"}
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, text := range inputs {
				engine.ProcessUpdate(ctx, textUpdate(testUserID, text))
			}
		}()
	}
	wg.Wait()

	if sender.overlap.Load() {
		t.Error("two handlers for the same user ran concurrently")
	}
	switch state := engine.session(testUserID).state; state {
	case StateIdle, StateCollectingName, StateCollectingPhone, StateCollectingAddress, StateSelectingDelivery:
	default:
		t.Errorf("final state = %v, not reachable from the raced inputs", state)
	}
}

func TestAdminCommandsIgnoredForRegularUsers(t *testing.T) {
	engine, _, sender := newTestEngine(t, nil)
	ctx := context.Background()

	engine.ProcessUpdate(ctx, textUpdate(testUserID, "/admin"))
	engine.ProcessUpdate(ctx, textUpdate(testUserID, "/add_item"))

	if got := len(sender.messagesTo(testUserID)); got != 0 {
		t.Errorf("messages to non-admin = %d, want 0", got)
	}
}
