package mock

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
)

type jsonWebKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jsonWebKeySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// defaultJWKSHandler handles /.well-known/jwks.json requests by exposing the
// server's public key
func (m *AuthService) defaultJWKSHandler(w http.ResponseWriter, _ *http.Request) {
	pubKey := m.PrivateKey.Public().(*rsa.PublicKey)
	nB64 := base64.RawURLEncoding.EncodeToString(pubKey.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(new(big.Int).SetInt64(int64(pubKey.E)).Bytes())
	jwks := jsonWebKeySet{Keys: []jsonWebKey{
		{Kty: "RSA", Use: "sig", Alg: "RS256", Kid: m.KeyID, N: nB64, E: eB64},
	}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}
