package mock

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuthService is a test server that simulates a Pollbase authentication
// backend: password and refresh-token grants, sign-up, identity lookup,
// token revocation and a JWKS endpoint for the RS256 keys it signs with.
//
// Every endpoint handler can be overridden per test; nil handlers fall back
// to the defaults.
type AuthService struct {
	PrivateKey     *rsa.PrivateKey
	KeyID          string
	Issuer         string
	APIKey         string
	AccessTokenTTL time.Duration

	TokenHandler    func(w http.ResponseWriter, r *http.Request)
	SignupHandler   func(w http.ResponseWriter, r *http.Request)
	UserinfoHandler func(w http.ResponseWriter, r *http.Request)
	RevokeHandler   func(w http.ResponseWriter, r *http.Request)
	JWKSHandler     func(w http.ResponseWriter, r *http.Request)

	mu            sync.Mutex
	users         map[string]*Account
	refreshTokens map[string]string
	tokenGrants   int
	revocations   int
}

// Account is a registered user of the mock service.
type Account struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
}

// NewAuthService creates a mock authentication service with a fresh RSA key.
func NewAuthService() (*AuthService, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %v", err)
	}
	return &AuthService{
		PrivateKey:     privateKey,
		KeyID:          uuid.New().String(),
		AccessTokenTTL: time.Hour,
		users:          map[string]*Account{},
		refreshTokens:  map[string]string{},
	}, nil
}

// AddUser registers an account so tests can sign in without going through
// the sign-up endpoint.
func (m *AuthService) AddUser(email, password string) *Account {
	account := &Account{
		ID:        uuid.New().String(),
		Email:     email,
		Password:  password,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[email] = account
	return account
}

// TokenGrants reports how many grants the token endpoint has served.
func (m *AuthService) TokenGrants() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenGrants
}

// Revocations reports how many revocation requests were served.
func (m *AuthService) Revocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revocations
}

// Register registers HTTP handlers for all mock endpoints onto the given ServeMux.
func (m *AuthService) Register(mux *http.ServeMux) {
	mux.Handle("/", &Handler{Server: m})
}

// Handler returns an http.Handler for all mock endpoints, suitable for any HTTP server.
func (m *AuthService) Handler() http.Handler {
	mux := http.NewServeMux()
	m.Register(mux)
	return mux
}

func (m *AuthService) lookup(email string) (*Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.users[email]
	return account, ok
}

func writeOAuthError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "error_description": description})
}
