package auth

import (
	"time"

	"golang.org/x/oauth2"
)

// expiryLeeway treats a session as expired slightly before its actual
// expiry so that a token refreshed here is still accepted by the service.
const expiryLeeway = 30 * time.Second

// Session represents the currently authenticated identity together with the
// credentials issued for it. A nil *Session means "unauthenticated".
//
// The full value is JSON-serializable so that a SessionStore can persist it
// across process restarts.
type Session struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         *User     `json:"user,omitempty"`
}

// User describes the identity a session was issued for.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Expired reports whether the access token is expired, or close enough to
// expiry that it should be rotated before use. Sessions without an expiry
// never expire.
func (s *Session) Expired(now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(expiryLeeway).Before(s.ExpiresAt)
}

// Token converts the session credentials to an oauth2 token.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    s.TokenType,
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}

// sessionFromToken builds a session from a token-endpoint response,
// carrying over the user identity when the response does not include one.
func sessionFromToken(token *oauth2.Token, user *User) *Session {
	return &Session{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
		User:         user,
	}
}
