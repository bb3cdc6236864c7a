package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/set-night/sketchbot/internal/domain"
)

type AuthMode string

const (
	AuthSignIn AuthMode = "signin"
	AuthSignUp AuthMode = "signup"
)

type Credentials struct {
	Email    string
	Password string
	Username string
}

// AuthService submits sign-in / sign-up forms and owns the stored session.
type AuthService struct {
	backend   *Backend
	sessions  *SessionStore
	notifier  Notifier
	onSuccess func(mode AuthMode, token string, user domain.UserRef)
	flight    Flight
}

func NewAuthService(backend *Backend, sessions *SessionStore, notifier Notifier) *AuthService {
	return &AuthService{backend: backend, sessions: sessions, notifier: notifier}
}

// OnSuccess registers a callback run after a session is stored. mode tells
// a sign-in from a new account.
func (s *AuthService) OnSuccess(fn func(mode AuthMode, token string, user domain.UserRef)) {
	s.onSuccess = fn
}

// Submitting reports whether a form submission is outstanding.
func (s *AuthService) Submitting() bool {
	return s.flight.Busy()
}

// Submit sends the form for mode. While one submission is outstanding,
// further calls return domain.ErrBusy without touching the network.
func (s *AuthService) Submit(ctx context.Context, mode AuthMode, creds Credentials) (*domain.Session, error) {
	release, ok := s.flight.TryAcquire()
	if !ok {
		return nil, domain.ErrBusy
	}
	defer release()

	var (
		url     string
		payload any
		done    string
	)
	switch mode {
	case AuthSignIn:
		url = s.backend.Endpoints().SignIn()
		payload = signInRequest{Email: creds.Email, Password: creds.Password}
		done = "Signed in successfully!"
	case AuthSignUp:
		url = s.backend.Endpoints().SignUp()
		payload = signUpRequest{Email: creds.Email, Password: creds.Password, Username: creds.Username}
		done = "Account created successfully!"
	default:
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}

	session, err := s.backend.Authenticate(ctx, url, payload)
	if err != nil {
		attrs := []any{"mode", mode, "error", err}
		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			attrs = append(attrs, "status", authErr.StatusCode, "detail", authErr.Detail)
		}
		slog.Error("auth failed", attrs...)
		s.notifier.Error(ctx, authMessage(err))
		return nil, err
	}

	if err := s.sessions.Save(ctx, *session); err != nil {
		slog.Error("save session", "error", err)
		s.notifier.Error(ctx, "Authentication failed")
		return nil, err
	}

	if s.onSuccess != nil {
		s.onSuccess(mode, session.Token, session.User())
	}
	s.notifier.Success(ctx, done)
	return session, nil
}

// Logout forgets the stored session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	s.notifier.Success(ctx, "Signed out")
	return nil
}

// Current returns the stored session or domain.ErrNoSession.
func (s *AuthService) Current(ctx context.Context) (*domain.Session, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

// Profile asks the backend who the stored token belongs to.
func (s *AuthService) Profile(ctx context.Context) (*domain.Profile, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return s.backend.Me(ctx, session.Token)
}

// authMessage is the text shown for a failed submission. Rejections carry
// the backend's detail; anything else reads "Authentication failed".
func authMessage(err error) string {
	var authErr *domain.AuthenticationError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	return "Authentication failed"
}

// InspectToken reads the subject and expiry of an access token without
// verifying its signature; the client never holds the signing key.
func InspectToken(token string) (domain.TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.TokenInfo{}, fmt.Errorf("parse token: %w", err)
	}
	info := domain.TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// TokenTTL is the time left before the token expires; zero when it has no
// expiry or already expired.
func TokenTTL(info domain.TokenInfo, now time.Time) time.Duration {
	if info.ExpiresAt.IsZero() || !now.Before(info.ExpiresAt) {
		return 0
	}
	return info.ExpiresAt.Sub(now)
}
