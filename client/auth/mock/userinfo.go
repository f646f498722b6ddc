package mock

import (
	"encoding/json"
	"net/http"
)

// defaultUserinfoHandler handles /userinfo requests
func (m *AuthService) defaultUserinfoHandler(w http.ResponseWriter, r *http.Request) {
	account, ok := m.authenticate(r)
	if !ok {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired access token")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"sub":        account.ID,
		"email":      account.Email,
		"created_at": account.CreatedAt,
	})
}
