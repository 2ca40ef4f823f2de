package convo

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"techshop-bot/internal/i18n"
	"techshop-bot/internal/metrics"
	"techshop-bot/internal/repo"
	"techshop-bot/internal/tg"
)

// Sender is the outbound side of the messaging transport.
type Sender interface {
	SendMessage(ctx context.Context, req tg.SendMessageRequest) (*tg.Message, error)
	EditMessageText(ctx context.Context, req tg.EditMessageTextRequest) error
	AnswerCallbackQuery(ctx context.Context, req tg.AnswerCallbackQueryRequest) error
	SendInvoice(ctx context.Context, req tg.SendInvoiceRequest) error
	AnswerPreCheckoutQuery(ctx context.Context, req tg.AnswerPreCheckoutQueryRequest) error
}

// DraftStore persists frozen checkout drafts across restarts. The Redis
// cache satisfies it; a nil store degrades to memory-only drafts.
type DraftStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
}

// EngineConfig carries engine-level settings.
type EngineConfig struct {
	AdminIDs     []int64
	PaymentToken string
	DraftTTL     time.Duration
}

// session is one user's conversation context. Its mutex serializes every
// inbound event for that user, so checkout steps never interleave.
type session struct {
	mu         sync.Mutex
	state      State
	draft      checkoutDraft
	adminDraft adminProductDraft
}

// Engine drives all conversations: the checkout state machine, catalog and
// cart browsing, settings, payment settlement and admin review.
type Engine struct {
	repo    repo.Repository
	sender  Sender
	drafts  DraftStore
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     EngineConfig

	mu       sync.Mutex
	sessions map[int64]*session
}

// New creates the conversation engine.
func New(repository repo.Repository, sender Sender, drafts DraftStore, metricRegistry *metrics.Metrics, logger *slog.Logger, cfg EngineConfig) *Engine {
	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = 24 * time.Hour
	}
	return &Engine{
		repo:     repository,
		sender:   sender,
		drafts:   drafts,
		metrics:  metricRegistry,
		logger:   logger.With("component", "convo"),
		cfg:      cfg,
		sessions: make(map[int64]*session),
	}
}

func (e *Engine) session(userID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[userID]
	if !ok {
		s = &session{state: StateIdle}
		e.sessions[userID] = s
	}
	return s
}

func (e *Engine) isAdmin(userID int64) bool {
	for _, id := range e.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// userConfig loads the user's language and currency preferences.
func (e *Engine) userConfig(ctx context.Context, userID int64) (i18n.Lang, string) {
	lang, curr, err := e.repo.GetUserSettings(ctx, userID)
	if err != nil {
		e.logger.Error("load user settings failed", "user_id", userID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_settings").Inc()
		}
		return i18n.Fallback, "UAH"
	}
	return i18n.Normalize(lang), curr
}

// ProcessUpdate dispatches one inbound update under the owning user's
// session lock. It satisfies tg.UpdateProcessor.
func (e *Engine) ProcessUpdate(ctx context.Context, update tg.Update) {
	userID, ok := updateUser(update)
	if !ok {
		return
	}

	sess := e.session(userID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch {
	case update.PreCheckoutQuery != nil:
		e.handlePreCheckout(ctx, sess, *update.PreCheckoutQuery)
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		e.handleSuccessfulPayment(ctx, sess, *update.Message)
	case update.CallbackQuery != nil:
		e.handleCallback(ctx, sess, *update.CallbackQuery)
	case update.Message != nil:
		e.handleMessage(ctx, sess, *update.Message)
	}
}

func updateUser(update tg.Update) (int64, bool) {
	switch {
	case update.PreCheckoutQuery != nil:
		return update.PreCheckoutQuery.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	default:
		return 0, false
	}
}

func (e *Engine) handleMessage(ctx context.Context, sess *session, msg tg.Message) {
	userID := msg.From.ID
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	lang, curr := e.userConfig(ctx, userID)

	// FSM input takes precedence over menu commands while a flow is active.
	if sess.state.inCheckout() {
		e.handleCheckoutInput(ctx, sess, msg, lang, curr)
		return
	}
	if sess.state >= StateAdminAddName && e.isAdmin(userID) {
		e.handleAdminAddInput(ctx, sess, msg, lang)
		return
	}

	switch {
	case text == "/start":
		e.handleStart(ctx, msg)
	case text == "/catalog" || isButton(text, i18n.CatalogBtn):
		e.showCategories(ctx, msg.Chat.ID, userID)
	case text == "/cart" || isButton(text, i18n.CartBtn):
		e.showCart(ctx, msg.Chat.ID, userID)
	case text == "/info" || isButton(text, i18n.InfoBtn):
		e.showInfo(ctx, msg.Chat.ID, userID)
	case isButton(text, i18n.OrdersBtn):
		e.showMyOrders(ctx, msg.Chat.ID, userID)
	case isButton(text, i18n.SettingsBtn):
		e.showSettings(ctx, msg.Chat.ID, userID)
	case text == "/admin" || isButton(text, i18n.AdminBtn):
		e.handleAdminPanel(ctx, msg)
	case text == "/add_item":
		e.startAdminAdd(ctx, sess, msg)
	case text == "/remove_item":
		e.handleAdminRemoveList(ctx, msg)
	case text == "/orders":
		e.handleAdminOrders(ctx, msg, lang)
	default:
		// Unknown free text outside any flow is ignored on purpose.
	}
}

func (e *Engine) handleCallback(ctx context.Context, sess *session, cb tg.CallbackQuery) {
	userID := cb.From.ID
	data := cb.Data
	lang, curr := e.userConfig(ctx, userID)

	switch {
	case data == "settings_lang":
		e.showLangSelection(ctx, cb)
	case data == "settings_curr":
		e.showCurrencySelection(ctx, cb)
	case strings.HasPrefix(data, "setlang_"):
		e.setLanguage(ctx, cb, strings.TrimPrefix(data, "setlang_"))
	case strings.HasPrefix(data, "setcurr_"):
		e.setCurrency(ctx, cb, strings.TrimPrefix(data, "setcurr_"))
	case data == "back_to_menu" || data == "back_to_cats":
		e.editCategories(ctx, cb, userID)
	case strings.HasPrefix(data, "category_"):
		e.showCategoryProducts(ctx, cb, strings.TrimPrefix(data, "category_"), lang, curr)
	case strings.HasPrefix(data, "product_"):
		e.showProductDetail(ctx, cb, parseID(data, "product_"), lang, curr)
	case strings.HasPrefix(data, "add_cart_"):
		e.addToCart(ctx, cb, parseID(data, "add_cart_"), lang)
	case strings.HasPrefix(data, "del_cart_"):
		e.removeCartLine(ctx, cb, parseID(data, "del_cart_"), lang, curr)
	case data == "clear_cart":
		e.clearCart(ctx, cb, lang)
	case data == "checkout_start":
		e.startCheckout(ctx, sess, cb, lang)
	case strings.HasPrefix(data, "view_order_"), strings.HasPrefix(data, "approve_"), strings.HasPrefix(data, "reject_"),
		data == "admin_refresh_orders", data == "admin_back_orders", strings.HasPrefix(data, "admin_del_"):
		e.handleAdminCallback(ctx, cb, lang)
	default:
		e.answerCallback(ctx, cb.ID, "", false)
	}
}

// isButton reports whether text equals the localized button label in any
// supported language. Menu buttons are reply-keyboard texts, so both
// languages must be recognized regardless of the stored preference.
func isButton(text string, key i18n.Key) bool {
	return text == i18n.T(i18n.LangUA, key) || text == i18n.T(i18n.LangEN, key)
}

func parseID(data, prefix string) int64 {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (e *Engine) answerCallback(ctx context.Context, callbackID, text string, alert bool) {
	if err := e.sender.AnswerCallbackQuery(ctx, tg.AnswerCallbackQueryRequest{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	}); err != nil {
		e.logger.Warn("answer callback failed", "error", err)
	}
}

// send delivers a message and logs delivery failures without surfacing them;
// outbound sends are fire-and-forget from the state machine's perspective.
func (e *Engine) send(ctx context.Context, req tg.SendMessageRequest) {
	if req.ParseMode == "" {
		req.ParseMode = "HTML"
	}
	if _, err := e.sender.SendMessage(ctx, req); err != nil {
		e.logger.Error("send message failed", "chat_id", req.ChatID, "error", err)
		if e.metrics != nil {
			e.metrics.Errors.WithLabelValues("convo_send").Inc()
		}
	}
}
