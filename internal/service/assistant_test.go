package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
)

func TestSendBlankIsNoop(t *testing.T) {
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	ws, _, notes := newTestWorkspace(fb.backend())

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := ws.Assistant.Send(context.Background(), text)
		if msg != nil || err != nil {
			t.Errorf("Send(%q) = %v, %v; want nil, nil", text, msg, err)
		}
	}
	if got := fb.hits.Load(); got != 0 {
		t.Errorf("backend hits = %d, want 0", got)
	}
	if got := len(ws.Assistant.Transcript()); got != 1 {
		t.Errorf("transcript len = %d, want 1 (greeting only)", got)
	}
	if len(notes.notes) != 0 {
		t.Errorf("notifications = %v, want none", notes.notes)
	}
}

func TestSendSuccess(t *testing.T) {
	var got chatRequest
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ai-assistant/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":"ok","data":{"response":"Use more contrast."}}`))
	})
	ws, store, _ := newTestWorkspace(fb.backend())
	now := time.Date(2026, 3, 1, 12, 30, 0, 5_000_000, time.UTC)
	ws.Assistant.now = func() time.Time { return now }

	msg, err := ws.Assistant.Send(context.Background(), "Is this readable?")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Role != domain.RoleAssistant || msg.Text != "Use more contrast." {
		t.Errorf("reply = %+v", msg)
	}
	if got.Message != "Is this readable?" || got.Context != config.AssistantContext {
		t.Errorf("request = %+v", got)
	}

	transcript := ws.Assistant.Transcript()
	want := []domain.ChatMessage{
		{Role: domain.RoleAssistant, Text: config.AssistantGreeting},
		{Role: domain.RoleUser, Text: "Is this readable?"},
		{Role: domain.RoleAssistant, Text: "Use more contrast."},
	}
	if len(transcript) != len(want) {
		t.Fatalf("transcript = %+v", transcript)
	}
	for i := range want {
		if transcript[i] != want[i] {
			t.Errorf("transcript[%d] = %+v, want %+v", i, transcript[i], want[i])
		}
	}

	raw, _, _ := store.Get(context.Background(), KeyHistory)
	entries, err := domain.DecodeHistory([]byte(raw))
	if err != nil || len(entries) != 1 {
		t.Fatalf("history = %v, %v", entries, err)
	}
	rec, ok := entries[0].(domain.ChatRecord)
	if !ok {
		t.Fatalf("entry type = %T", entries[0])
	}
	if rec.ID != "chat_1772368200005" || rec.Timestamp != "2026-03-01T12:30:00.005Z" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Message != "Is this readable? → Use more contrast." {
		t.Errorf("message = %q", rec.Message)
	}
	if ws.Assistant.Sending() {
		t.Error("Sending() = true after success")
	}
}

func TestSendFailureFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", 500, ``, ReplyUnavailable},
		{"unauthorized", 401, ``, ReplyAuthConfig},
		{"forbidden", 403, ``, ReplyAuthConfig},
		{"rate limited", 429, ``, ReplyRateLimited},
		{"empty reply", 200, `{"status":"ok","data":{"response":""}}`, ReplyConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			ws, store, notes := newTestWorkspace(fb.backend())

			msg, err := ws.Assistant.Send(context.Background(), "hello")
			if err == nil {
				t.Fatal("Send() error = nil")
			}
			if msg == nil || msg.Text != tt.want {
				t.Errorf("fallback = %+v, want %q", msg, tt.want)
			}

			transcript := ws.Assistant.Transcript()
			if last := transcript[len(transcript)-1]; last.Role != domain.RoleAssistant || last.Text != tt.want {
				t.Errorf("last transcript entry = %+v", last)
			}
			if n := notes.last(); n.ok || n.msg != "Failed to get AI response" {
				t.Errorf("notification = %+v", n)
			}
			if _, ok, _ := store.Get(context.Background(), KeyHistory); ok {
				t.Error("history written after failure")
			}
			if ws.Assistant.Sending() {
				t.Error("Sending() = true after failure")
			}
		})
	}
}

func TestSendNetworkFailure(t *testing.T) {
	ws, _, _ := newTestWorkspace(unreachableBackend(t))

	msg, err := ws.Assistant.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("Send() error = nil")
	}
	if msg == nil || msg.Text != ReplyConnection {
		t.Errorf("fallback = %+v, want %q", msg, ReplyConnection)
	}
}

func TestSendUnreachableBackendWithDigitsInURL(t *testing.T) {
	ws, _, _ := newTestWorkspace(unreachableBackendAt(t, "/v500/401/429"))

	msg, err := ws.Assistant.Send(context.Background(), "hello")
	var netErr *domain.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Send() error = %v, want NetworkError", err)
	}
	if msg == nil || msg.Text != ReplyConnection {
		t.Errorf("fallback = %+v, want %q", msg, ReplyConnection)
	}
}

func TestExplainChatError(t *testing.T) {
	dialErr := &url.Error{
		Op:  "Post",
		URL: "http://127.0.0.1:5000/ai-assistant/chat",
		Err: errors.New("dial tcp 127.0.0.1:5000: connect: connection refused"),
	}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"500", &domain.HTTPError{StatusCode: 500}, ReplyUnavailable},
		{"502", &domain.HTTPError{StatusCode: 502}, ReplyConnection},
		{"401", &domain.HTTPError{StatusCode: 401}, ReplyAuthConfig},
		{"403", &domain.HTTPError{StatusCode: 403}, ReplyAuthConfig},
		{"429", &domain.HTTPError{StatusCode: 429}, ReplyRateLimited},
		{"envelope with status", &domain.ResponseShapeError{Message: "upstream 429 from provider"}, ReplyRateLimited},
		{"envelope", &domain.ResponseShapeError{Message: "No response"}, ReplyConnection},
		{"connection refused", &domain.NetworkError{Op: "chat request", Err: dialErr}, ReplyConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExplainChatError(tt.err); got != tt.want {
				t.Errorf("ExplainChatError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSendWhileSendingIsIgnored(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	fb := newFakeBackend(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-unblock
		w.Write([]byte(`{"status":"ok","data":{"response":"ok"}}`))
	})
	ws, _, _ := newTestWorkspace(fb.backend())

	done := make(chan error, 1)
	go func() {
		_, err := ws.Assistant.Send(context.Background(), "first")
		done <- err
	}()
	<-entered

	msg, err := ws.Assistant.Send(context.Background(), "second")
	if msg != nil || err != nil {
		t.Errorf("Send() while busy = %v, %v; want nil, nil", msg, err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("first Send() error = %v", err)
	}
	if got := fb.hits.Load(); got != 1 {
		t.Errorf("backend hits = %d, want 1", got)
	}
	if got := len(ws.Assistant.Transcript()); got != 3 {
		t.Errorf("transcript len = %d, want 3", got)
	}
}
