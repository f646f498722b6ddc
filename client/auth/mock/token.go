package mock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultTokenHandler handles /oauth/token requests
func (m *AuthService) defaultTokenHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}
	switch r.FormValue("grant_type") {
	case "password":
		account, ok := m.lookup(r.FormValue("username"))
		if !ok || account.Password != r.FormValue("password") {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid login credentials")
			return
		}
		m.issueTokens(w, account)
	case "refresh_token":
		account, ok := m.rotateRefreshToken(r.FormValue("refresh_token"))
		if !ok {
			writeOAuthError(w, http.StatusBadRequest, "invalid_grant", "Invalid refresh token")
			return
		}
		m.issueTokens(w, account)
	default:
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "Unsupported grant type")
	}
}

// rotateRefreshToken consumes the presented refresh token; a replayed token
// is rejected the way the real service rejects it.
func (m *AuthService) rotateRefreshToken(refreshToken string) (*Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.refreshTokens[refreshToken]
	if !ok {
		return nil, false
	}
	delete(m.refreshTokens, refreshToken)
	account, ok := m.users[email]
	return account, ok
}

func (m *AuthService) issueTokens(w http.ResponseWriter, account *Account) {
	accessToken, err := m.createJWT(account, m.AccessTokenTTL)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	refreshToken := uuid.New().String()
	m.mu.Lock()
	m.refreshTokens[refreshToken] = account.Email
	m.tokenGrants++
	m.mu.Unlock()
	response := map[string]interface{}{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"refresh_token": refreshToken,
		"expires_in":    int(m.AccessTokenTTL / time.Second),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
