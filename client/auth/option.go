package auth

import (
	"net/http"
	"time"
)

type Option func(*Client)

// WithAPIKey sets the project API key sent with every request.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithHTTPClient sets the HTTP client used for service calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithStore sets the session store.
func WithStore(store SessionStore) Option {
	return func(c *Client) {
		c.store = store
	}
}

// WithClientCredentials sets the OAuth2 client id and secret presented to
// the token endpoint.
func WithClientCredentials(id, secret string) Option {
	return func(c *Client) {
		c.clientID = id
		c.clientSecret = secret
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}
