package domain

import "time"

// Session is the signed-in identity persisted on the client.
type Session struct {
	Token    string
	UserID   int64
	Username string
}

// UserRef is what the auth success callback receives next to the token.
type UserRef struct {
	ID       int64
	Username string
}

func (s Session) User() UserRef {
	return UserRef{ID: s.UserID, Username: s.Username}
}

// Profile is the backend's view of the signed-in user (/auth/me).
type Profile struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

// TokenInfo holds the claims read from a stored access token.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

func (t TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}
