package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pollbase/pollbase-go/client/auth"
)

// fakeSessionSource is a mock SessionSource with overridable behavior.
type fakeSessionSource struct {
	currentFunc func(ctx context.Context) (*auth.Session, error)
	refreshFunc func(ctx context.Context) (*auth.Session, error)
	refreshed   atomic.Int32
}

func (f *fakeSessionSource) CurrentSession(ctx context.Context) (*auth.Session, error) {
	return f.currentFunc(ctx)
}

func (f *fakeSessionSource) RefreshSession(ctx context.Context) (*auth.Session, error) {
	f.refreshed.Add(1)
	return f.refreshFunc(ctx)
}

func TestRoundTripper_AttachesCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer current-token", r.Header.Get("Authorization"))
		require.Equal(t, "test-api-key", r.Header.Get("apikey"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := &fakeSessionSource{
		currentFunc: func(ctx context.Context) (*auth.Session, error) {
			return &auth.Session{AccessToken: "current-token"}, nil
		},
	}
	rt, err := New(source, WithAPIKey("test-api-key"))
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRoundTripper_NoSessionPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	source := &fakeSessionSource{
		currentFunc: func(ctx context.Context) (*auth.Session, error) {
			return nil, nil
		},
	}
	rt, err := New(source)
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), source.refreshed.Load())
}

func TestRoundTripper_SessionRequired(t *testing.T) {
	source := &fakeSessionSource{
		currentFunc: func(ctx context.Context) (*auth.Session, error) {
			return nil, nil
		},
	}
	rt, err := New(source, WithSessionRequired())
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	_, err = client.Get("http://localhost/protected")
	require.ErrorIs(t, err, auth.ErrNoSession)
}

func TestRoundTripper_RefreshAndReplay(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(data))
		mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	source := &fakeSessionSource{
		currentFunc: func(ctx context.Context) (*auth.Session, error) {
			return &auth.Session{AccessToken: "stale-token", RefreshToken: "refresh"}, nil
		},
		refreshFunc: func(ctx context.Context) (*auth.Session, error) {
			return &auth.Session{AccessToken: "fresh-token", RefreshToken: "refresh"}, nil
		},
	}
	rt, err := New(source)
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	resp, err := client.Post(server.URL, "application/json", strings.NewReader(`{"vote":1}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int32(1), source.refreshed.Load())
	// the replayed request must carry the full body again
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{`{"vote":1}`, `{"vote":1}`}, bodies)
}

func TestRoundTripper_NoReplayWithoutRefreshToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	source := &fakeSessionSource{
		currentFunc: func(ctx context.Context) (*auth.Session, error) {
			return &auth.Session{AccessToken: "stale-token"}, nil
		},
	}
	rt, err := New(source)
	require.NoError(t, err)

	client := &http.Client{Transport: rt}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(0), source.refreshed.Load())
}
