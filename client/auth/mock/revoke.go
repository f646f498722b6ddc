package mock

import (
	"encoding/json"
	"net/http"
)

// defaultRevokeHandler handles /revoke requests. Revoking an unknown token
// succeeds, mirroring RFC 7009.
func (m *AuthService) defaultRevokeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)
	m.mu.Lock()
	delete(m.refreshTokens, payload.Token)
	m.revocations++
	m.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}
