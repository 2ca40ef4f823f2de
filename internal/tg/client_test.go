package tg

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{Token: "123:abc", BaseURL: server.URL}, testLogger(), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody SendMessageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"message_id": 42},
		})
	})

	msg, err := client.SendMessage(context.Background(), SendMessageRequest{
		ChatID: 7, Text: "hello",
	})
	if err != nil {
		t.Fatalf("SendMessage returned error: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.ChatID != 7 || gotBody.Text != "hello" {
		t.Errorf("request body = %+v", gotBody)
	}
	if msg.MessageID != 42 {
		t.Errorf("message id = %d, want 42", msg.MessageID)
	}
}

func TestCallSurfacesAPIErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "Bad Request: chat not found",
			"error_code":  400,
		})
	})

	_, err := client.SendMessage(context.Background(), SendMessageRequest{ChatID: 1, Text: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("error = %v, want API description included", err)
	}
}

func TestGetUpdates(t *testing.T) {
	var gotOffset float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		gotOffset = payload["offset"].(float64)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": []map[string]any{
				{"update_id": 10, "message": map[string]any{"message_id": 1, "chat": map[string]any{"id": 5}, "text": "hi"}},
				{"update_id": 11, "callback_query": map[string]any{"id": "cb", "from": map[string]any{"id": 5}, "data": "clear_cart"}},
			},
		})
	})

	updates, err := client.GetUpdates(context.Background(), 10)
	if err != nil {
		t.Fatalf("GetUpdates returned error: %v", err)
	}
	if gotOffset != 10 {
		t.Errorf("offset = %v, want 10", gotOffset)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "hi" {
		t.Errorf("first update = %+v", updates[0])
	}
	if updates[1].CallbackQuery == nil || updates[1].CallbackQuery.Data != "clear_cart" {
		t.Errorf("second update = %+v", updates[1])
	}
}

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(Config{}, testLogger(), nil); err == nil {
		t.Fatal("expected error for missing token")
	}
}
