package pollbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbase/pollbase-go/client/auth/mock"
)

func TestNewClient_EndToEnd(t *testing.T) {
	service, err := mock.NewAuthService()
	require.NoError(t, err)
	service.APIKey = "project-key"
	service.AddUser("voter@example.com", "secret")

	var mu sync.Mutex
	var gotAuthorization, gotAPIKey string
	mux := http.NewServeMux()
	mux.Handle("/auth/v1/", http.StripPrefix("/auth/v1", service.Handler()))
	mux.HandleFunc("/rest/v1/polls", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuthorization = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"11","question":"Tabs or spaces?"}]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	service.Issuer = server.URL + "/auth/v1"

	client, err := NewClient(context.Background(), &ClientOptions{
		URL:    server.URL,
		APIKey: "project-key",
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	session, err := client.Auth.SignInWithPassword(ctx, "voter@example.com", "secret")
	require.NoError(t, err)
	require.NotNil(t, session)

	// the session store converges on the signed-in state
	require.Eventually(t, func() bool {
		current, loading := client.Sessions.Current()
		return !loading && current != nil && current.AccessToken == session.AccessToken
	}, time.Second, 10*time.Millisecond)

	var polls []struct {
		ID       string `json:"id"`
		Question string `json:"question"`
	}
	require.NoError(t, client.DB.From("polls").Do(ctx, &polls))
	require.Len(t, polls, 1)
	assert.Equal(t, "Tabs or spaces?", polls[0].Question)
	mu.Lock()
	assert.Equal(t, "Bearer "+session.AccessToken, gotAuthorization)
	assert.Equal(t, "project-key", gotAPIKey)
	mu.Unlock()

	require.NoError(t, client.Auth.SignOut(ctx))
	current, loading := client.Sessions.Current()
	assert.Nil(t, current)
	assert.False(t, loading)
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(context.Background(), &ClientOptions{})
	require.Error(t, err)

	_, err = NewClient(context.Background(), nil)
	require.Error(t, err)
}

func TestNewClient_SessionFileStore(t *testing.T) {
	service, err := mock.NewAuthService()
	require.NoError(t, err)
	service.AddUser("voter@example.com", "secret")

	mux := http.NewServeMux()
	mux.Handle("/auth/v1/", http.StripPrefix("/auth/v1", service.Handler()))
	server := httptest.NewServer(mux)
	defer server.Close()
	service.Issuer = server.URL + "/auth/v1"

	sessionFile := t.TempDir() + "/session.json"
	options := &ClientOptions{URL: server.URL, SessionFile: sessionFile}

	client, err := NewClient(context.Background(), options)
	require.NoError(t, err)
	ctx := context.Background()
	signedIn, err := client.Auth.SignInWithPassword(ctx, "voter@example.com", "secret")
	require.NoError(t, err)
	client.Close()

	// a second client picks the persisted session up
	reopened, err := NewClient(context.Background(), options)
	require.NoError(t, err)
	defer reopened.Close()
	session, err := reopened.Auth.CurrentSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, signedIn.AccessToken, session.AccessToken)
}
