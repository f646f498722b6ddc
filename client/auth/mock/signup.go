package mock

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// defaultSignupHandler handles /signup requests
func (m *AuthService) defaultSignupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Malformed request body")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", "Email and password are required")
		return
	}
	m.mu.Lock()
	if _, ok := m.users[payload.Email]; ok {
		m.mu.Unlock()
		writeOAuthError(w, http.StatusUnprocessableEntity, "user_already_exists", "A user with this email address has already been registered")
		return
	}
	account := &Account{
		ID:        uuid.New().String(),
		Email:     payload.Email,
		Password:  payload.Password,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	m.users[payload.Email] = account
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":         account.ID,
		"email":      account.Email,
		"created_at": account.CreatedAt,
	})
}
