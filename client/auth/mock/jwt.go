package mock

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// createJWT creates a signed access token for the account with the given expiry.
// The jti claim keeps tokens minted within the same second distinct.
func (m *AuthService) createJWT(account *Account, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   m.Issuer,
		"sub":   account.ID,
		"aud":   "authenticated",
		"email": account.Email,
		"exp":   now.Add(expiry).Unix(),
		"iat":   now.Unix(),
		"jti":   uuid.New().String(),
		"typ":   "access_token",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = m.KeyID
	return token.SignedString(m.PrivateKey)
}

// authenticate resolves the bearer token of a request to the account it was
// issued for.
func (m *AuthService) authenticate(r *http.Request) (*Account, bool) {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.PrivateKey.Public(), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	email, _ := claims["email"].(string)
	return m.lookup(email)
}
