package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/domain"
)

// Fallback replies shown in the transcript when the assistant call fails.
const (
	ReplyUnavailable = "The AI service is currently unavailable. Please check if the Gemini API key is configured correctly."
	ReplyAuthConfig  = "Authentication failed. Please check the Gemini API key configuration."
	ReplyRateLimited = "Rate limit exceeded. Please wait a moment and try again."
	ReplyConnection  = "Sorry, I'm having trouble connecting to the AI service. Please try again later."
)

// AssistantService keeps a chat transcript with the design assistant.
type AssistantService struct {
	backend  *Backend
	sessions *SessionStore
	notifier Notifier
	now      func() time.Time

	flight Flight

	mu         sync.Mutex
	transcript []domain.ChatMessage
}

func NewAssistantService(backend *Backend, sessions *SessionStore, notifier Notifier) *AssistantService {
	return &AssistantService{
		backend:  backend,
		sessions: sessions,
		notifier: notifier,
		now:      time.Now,
		transcript: []domain.ChatMessage{
			{Role: domain.RoleAssistant, Text: config.AssistantGreeting},
		},
	}
}

// Transcript returns a copy of the conversation so far.
func (s *AssistantService) Transcript() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *AssistantService) Sending() bool {
	return s.flight.Busy()
}

// Send posts text to the assistant. Blank text, or a send while another is
// in flight, is ignored and returns (nil, nil).
//
// On failure a fallback assistant message is still appended and returned
// together with the error.
func (s *AssistantService) Send(ctx context.Context, text string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	release, ok := s.flight.TryAcquire()
	if !ok {
		return nil, nil
	}
	defer release()

	s.appendMessage(domain.ChatMessage{Role: domain.RoleUser, Text: text})

	reply, err := s.backend.Chat(ctx, text, config.AssistantContext)
	if err != nil {
		slog.Error("assistant chat", "error", err)
		msg := domain.ChatMessage{Role: domain.RoleAssistant, Text: ExplainChatError(err)}
		s.appendMessage(msg)
		s.notifier.Error(ctx, "Failed to get AI response")
		return &msg, err
	}

	msg := domain.ChatMessage{Role: domain.RoleAssistant, Text: reply}
	s.appendMessage(msg)

	if err := s.sessions.AppendHistory(ctx, domain.NewChatRecord(s.now(), text, reply)); err != nil {
		slog.Warn("record chat history", "error", err)
	}
	return &msg, nil
}

func (s *AssistantService) appendMessage(m domain.ChatMessage) {
	s.mu.Lock()
	s.transcript = append(s.transcript, m)
	s.mu.Unlock()
}

// ExplainChatError picks the fallback reply for a failed chat call. Status
// answers map by code, a backend error envelope by its message text, and
// anything that never reached the backend gets ReplyConnection.
func ExplainChatError(err error) string {
	var httpErr *domain.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 500:
			return ReplyUnavailable
		case 401, 403:
			return ReplyAuthConfig
		case 429:
			return ReplyRateLimited
		}
		return ReplyConnection
	}

	var shapeErr *domain.ResponseShapeError
	if errors.As(err, &shapeErr) {
		msg := shapeErr.Message
		switch {
		case strings.Contains(msg, "500"):
			return ReplyUnavailable
		case strings.Contains(msg, "401"), strings.Contains(msg, "403"):
			return ReplyAuthConfig
		case strings.Contains(msg, "429"):
			return ReplyRateLimited
		}
	}
	return ReplyConnection
}
