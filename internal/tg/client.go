package tg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"techshop-bot/internal/metrics"
)

const defaultBaseURL = "https://api.telegram.org"

// Config holds configuration to initialise the Telegram client.
type Config struct {
	Token       string
	BaseURL     string
	Timeout     time.Duration
	PollTimeout time.Duration
}

// Client is a Telegram Bot API client over plain HTTPS/JSON.
type Client struct {
	httpClient  *http.Client
	logger      *slog.Logger
	metrics     *metrics.Metrics
	baseURL     string
	token       string
	pollTimeout time.Duration
	processor   UpdateProcessor
}

// UpdateProcessor handles inbound Telegram updates.
type UpdateProcessor interface {
	ProcessUpdate(ctx context.Context, update Update)
}

// New creates a Telegram client for the given bot token.
func New(cfg Config, logger *slog.Logger, metricRegistry *metrics.Metrics) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("bot token is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 25 * time.Second
	}

	return &Client{
		// Long polling holds the request open for pollTimeout, so the
		// HTTP timeout must exceed it.
		httpClient:  &http.Client{Timeout: timeout + pollTimeout},
		logger:      logger.With("component", "tg"),
		metrics:     metricRegistry,
		baseURL:     baseURL,
		token:       cfg.Token,
		pollTimeout: pollTimeout,
	}, nil
}

// SetUpdateProcessor registers the inbound update callback.
func (c *Client) SetUpdateProcessor(processor UpdateProcessor) {
	c.processor = processor
}

// apiResponse is the Bot API envelope around every method result.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status := "error"
	if err == nil {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	if c.metrics != nil {
		c.metrics.TGRequests.WithLabelValues(method, status).Inc()
		c.metrics.TGLatency.WithLabelValues(method, status).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("%s failed: %s (code %d)", method, envelope.Description, envelope.ErrorCode)
	}
	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// GetUpdates long-polls for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	payload := map[string]any{
		"offset":          offset,
		"timeout":         int(c.pollTimeout.Seconds()),
		"allowed_updates": []string{"message", "callback_query", "pre_checkout_query"},
	}
	var updates []Update
	if err := c.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.TGOutgoingSends.WithLabelValues("text").Inc()
	}
	return &msg, nil
}

// EditMessageText edits a previously sent message in place.
func (c *Client) EditMessageText(ctx context.Context, req EditMessageTextRequest) error {
	if err := c.call(ctx, "editMessageText", req, nil); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.TGOutgoingSends.WithLabelValues("edit").Inc()
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press, optionally with an alert.
func (c *Client) AnswerCallbackQuery(ctx context.Context, req AnswerCallbackQueryRequest) error {
	return c.call(ctx, "answerCallbackQuery", req, nil)
}

// SendInvoice issues a payment request to the chat.
func (c *Client) SendInvoice(ctx context.Context, req SendInvoiceRequest) error {
	if err := c.call(ctx, "sendInvoice", req, nil); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.TGOutgoingSends.WithLabelValues("invoice").Inc()
	}
	return nil
}

// AnswerPreCheckoutQuery replies to a payment pre-authorization request.
func (c *Client) AnswerPreCheckoutQuery(ctx context.Context, req AnswerPreCheckoutQueryRequest) error {
	return c.call(ctx, "answerPreCheckoutQuery", req, nil)
}

// DeleteWebhook drops any configured webhook so polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{"drop_pending_updates": true}, nil)
}

// Start runs the long-polling loop until ctx is cancelled, dispatching each
// update to the registered processor on its own goroutine.
func (c *Client) Start(ctx context.Context) error {
	if err := c.DeleteWebhook(ctx); err != nil {
		c.logger.Warn("delete webhook failed", "error", err)
	}
	c.logger.Info("telegram polling started")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("telegram polling stopped")
			return nil
		default:
		}

		updates, err := c.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("get updates failed", "error", err)
			if c.metrics != nil {
				c.metrics.Errors.WithLabelValues("tg_poll").Inc()
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			c.countUpdate(update)
			if c.processor != nil {
				go c.processor.ProcessUpdate(context.WithoutCancel(ctx), update)
			}
		}
	}
}

func (c *Client) countUpdate(update Update) {
	if c.metrics == nil {
		return
	}
	switch {
	case update.PreCheckoutQuery != nil:
		c.metrics.TGIncomingUpdates.WithLabelValues("pre_checkout_query").Inc()
	case update.CallbackQuery != nil:
		c.metrics.TGIncomingUpdates.WithLabelValues("callback_query").Inc()
	case update.Message != nil && update.Message.SuccessfulPayment != nil:
		c.metrics.TGIncomingUpdates.WithLabelValues("successful_payment").Inc()
	case update.Message != nil:
		c.metrics.TGIncomingUpdates.WithLabelValues("message").Inc()
	default:
		c.metrics.TGIncomingUpdates.WithLabelValues("other").Inc()
	}
}
