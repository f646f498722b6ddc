package mock

import (
	"net/http"
)

// Handler routes HTTP requests to the appropriate mock service endpoints.
type Handler struct {
	// Server is the mock authentication service with endpoint handlers.
	Server *AuthService
}

// ServeHTTP dispatches incoming HTTP requests based on URL path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Server.APIKey != "" && r.Header.Get("apikey") != h.Server.APIKey {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_api_key", "Invalid API key")
		return
	}
	switch r.URL.Path {
	case "/oauth/token":
		if h.Server.TokenHandler != nil {
			h.Server.TokenHandler(w, r)
		} else {
			h.Server.defaultTokenHandler(w, r)
		}
	case "/signup":
		if h.Server.SignupHandler != nil {
			h.Server.SignupHandler(w, r)
		} else {
			h.Server.defaultSignupHandler(w, r)
		}
	case "/userinfo":
		if h.Server.UserinfoHandler != nil {
			h.Server.UserinfoHandler(w, r)
		} else {
			h.Server.defaultUserinfoHandler(w, r)
		}
	case "/revoke":
		if h.Server.RevokeHandler != nil {
			h.Server.RevokeHandler(w, r)
		} else {
			h.Server.defaultRevokeHandler(w, r)
		}
	case "/.well-known/jwks.json":
		if h.Server.JWKSHandler != nil {
			h.Server.JWKSHandler(w, r)
		} else {
			h.Server.defaultJWKSHandler(w, r)
		}
	default:
		http.NotFound(w, r)
	}
}
