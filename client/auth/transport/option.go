package transport

import "net/http"

type Option func(*RoundTripper)

// WithAPIKey sets the project API key attached to every request.
func WithAPIKey(apiKey string) Option {
	return func(r *RoundTripper) {
		r.apiKey = apiKey
	}
}

// WithTransport sets the underlying transport; http.DefaultTransport is
// used otherwise.
func WithTransport(transport http.RoundTripper) Option {
	return func(r *RoundTripper) {
		r.transport = transport
	}
}

// WithSessionRequired makes requests without a session fail with
// auth.ErrNoSession instead of going out unauthenticated.
func WithSessionRequired() Option {
	return func(r *RoundTripper) {
		r.requireSession = true
	}
}
