package transport

import (
	"context"
	"net/http"

	"github.com/pollbase/pollbase-go/client/auth"
)

// SessionSource yields the session whose credentials authorize outgoing
// requests. *auth.Client satisfies it.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*auth.Session, error)
	RefreshSession(ctx context.Context) (*auth.Session, error)
}

var _ SessionSource = (*auth.Client)(nil)

// RoundTripper authorizes outgoing requests with the current session's
// access token and the project API key. When the service still answers
// 401 Unauthorized it forces one credential rotation and replays the
// request once.
type RoundTripper struct {
	source         SessionSource
	apiKey         string
	transport      http.RoundTripper
	requireSession bool
}

func New(source SessionSource, options ...Option) (*RoundTripper, error) {
	ret := &RoundTripper{
		source:    source,
		transport: http.DefaultTransport,
	}
	for _, opt := range options {
		opt(ret)
	}
	return ret, nil
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	session, err := r.source.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		if r.requireSession {
			return nil, auth.ErrNoSession
		}
		// let the service answer 401; "denied" vs "not signed in yet" is
		// the caller's distinction to make
		return r.transport.RoundTrip(r.decorate(clone(req), ""))
	}

	resp, err := r.transport.RoundTrip(r.decorate(clone(req), session.AccessToken))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || session.RefreshToken == "" {
		return resp, nil
	}
	// close the prior body so we don't leak
	resp.Body.Close()

	refreshed, err := r.source.RefreshSession(ctx)
	if err != nil {
		return nil, err
	}
	return r.transport.RoundTrip(r.decorate(clone(req), refreshed.AccessToken))
}

func (r *RoundTripper) decorate(req *http.Request, accessToken string) *http.Request {
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	return req
}
