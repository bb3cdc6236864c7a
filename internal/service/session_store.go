package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/set-night/sketchbot/internal/domain"
	"github.com/set-night/sketchbot/internal/storage"
)

// Storage keys.
const (
	KeyAuthToken = "auth_token"
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyHistory   = "app_history"
)

// SessionStore persists the signed-in session and the history log in one
// storage namespace.
type SessionStore struct {
	store storage.Store
}

func NewSessionStore(store storage.Store) *SessionStore {
	return &SessionStore{store: store}
}

// Save overwrites the stored session.
func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	fields := [][2]string{
		{KeyAuthToken, session.Token},
		{KeyUserID, strconv.FormatInt(session.UserID, 10)},
		{KeyUsername, session.Username},
	}
	for _, f := range fields {
		if err := s.store.Set(ctx, f[0], f[1]); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// Load returns nil when any session field is missing; partial state is
// treated as signed out, not as corruption.
func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	token, ok, err := s.store.Get(ctx, KeyAuthToken)
	if err != nil || !ok || token == "" {
		return nil, wrapLoad(err)
	}
	rawID, ok, err := s.store.Get(ctx, KeyUserID)
	if err != nil || !ok {
		return nil, wrapLoad(err)
	}
	username, ok, err := s.store.Get(ctx, KeyUsername)
	if err != nil || !ok || username == "" {
		return nil, wrapLoad(err)
	}

	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, nil
	}
	return &domain.Session{Token: token, UserID: userID, Username: username}, nil
}

func wrapLoad(err error) error {
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	return nil
}

// Clear removes the three session fields. History is kept.
func (s *SessionStore) Clear(ctx context.Context) error {
	for _, k := range []string{KeyAuthToken, KeyUserID, KeyUsername} {
		if err := s.store.Remove(ctx, k); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}

// AppendHistory prepends entry to the stored log.
//
// This is a plain read-modify-write: two appends that overlap can both read
// the same old log, and the later write drops the earlier entry.
func (s *SessionStore) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	existing, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}

	updated := make([]domain.HistoryEntry, 0, len(existing)+1)
	updated = append(updated, entry)
	updated = append(updated, existing...)

	data, err := domain.EncodeHistory(updated)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, KeyHistory, string(data)); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// LoadHistory returns the log newest first. Unparseable data reads as empty.
func (s *SessionStore) LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error) {
	raw, ok, err := s.store.Get(ctx, KeyHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok || raw == "" {
		return []domain.HistoryEntry{}, nil
	}

	entries, err := domain.DecodeHistory([]byte(raw))
	if err != nil {
		slog.Warn("discarding unreadable history", "error", err)
		return []domain.HistoryEntry{}, nil
	}
	return entries, nil
}
