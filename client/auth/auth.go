package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs/url"
	"golang.org/x/oauth2"

	"github.com/pollbase/pollbase-go/internal/collection"
)

const (
	autoRefreshTick = 30 * time.Second
)

// Credentials carries the payload of a sign-up request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Client talks to a Pollbase authentication service. It verifies
// credentials, keeps the issued session in a SessionStore and notifies
// subscribers about every session change.
type Client struct {
	issuer       string
	apiKey       string
	clientID     string
	clientSecret string
	config       *oauth2.Config
	httpClient   *http.Client
	store        SessionStore
	now          func() time.Time
	refreshTick  time.Duration

	refreshMu   sync.Mutex
	subscribers *collection.SyncMap[string, func(Event, *Session)]
}

// New creates a client for the authentication service rooted at issuer,
// e.g. https://myproject.pollbase.io/auth/v1.
func New(issuer string, options ...Option) (*Client, error) {
	if issuer == "" {
		return nil, errors.New("issuer is required")
	}
	ret := &Client{
		issuer:      issuer,
		httpClient:  http.DefaultClient,
		store:       NewMemoryStore(),
		now:         time.Now,
		refreshTick: autoRefreshTick,
		subscribers: collection.NewSyncMap[string, func(Event, *Session)](),
	}
	for _, opt := range options {
		opt(ret)
	}
	ret.config = &oauth2.Config{
		ClientID:     ret.clientID,
		ClientSecret: ret.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  url.Join(issuer, "oauth/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	if ret.apiKey != "" {
		base := ret.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		ret.httpClient = &http.Client{
			Transport: &apiKeyTransport{apiKey: ret.apiKey, next: base},
			Timeout:   ret.httpClient.Timeout,
		}
	}
	return ret, nil
}

// Store exposes the session store backing this client.
func (c *Client) Store() SessionStore {
	return c.store
}

// SignUp registers a new user and signs it in.
func (c *Client) SignUp(ctx context.Context, credentials Credentials) (*Session, error) {
	payload, err := json.Marshal(credentials)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url.Join(c.issuer, "signup"), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return c.SignInWithPassword(ctx, credentials.Email, credentials.Password)
}

// SignInWithPassword exchanges email and password for a session via the
// OAuth2 password grant, persists it and emits SignedIn.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	token, err := c.config.PasswordCredentialsToken(c.oauth2Context(ctx), email, password)
	if err != nil {
		return nil, asAPIError(err)
	}
	user, err := c.fetchUser(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	session := sessionFromToken(token, user)
	if err := c.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	c.emit(SignedIn, session)
	return session, nil
}

// SignOut revokes the refresh token, clears the persisted session and emits
// SignedOut with a nil session. Signing out without a session is a no-op.
func (c *Client) SignOut(ctx context.Context) error {
	session, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil
	}
	if session.RefreshToken != "" {
		// revocation is best effort, an unreachable service must not block local sign-out
		c.revoke(ctx, session.RefreshToken)
	}
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.emit(SignedOut, nil)
	return nil
}

// CurrentSession returns the persisted session, transparently rotating
// expired credentials. It returns (nil, nil) when unauthenticated.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	session, err := c.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, nil
	}
	if !session.Expired(c.now()) {
		return session, nil
	}
	if session.RefreshToken == "" {
		return nil, nil
	}
	return c.refreshSession(ctx, false)
}

// RefreshSession forces a credential rotation and emits TokenRefreshed.
func (c *Client) RefreshSession(ctx context.Context) (*Session, error) {
	return c.refreshSession(ctx, true)
}

func (c *Client) refreshSession(ctx context.Context, force bool) (*Session, error) {
	session, rotated, err := c.rotateSession(ctx, force)
	if err != nil {
		return nil, err
	}
	// subscribers may call back into this client, so the rotation lock must
	// be released before they run
	if rotated {
		c.emit(TokenRefreshed, session)
	}
	return session, nil
}

// rotateSession exchanges the refresh token for new credentials while
// holding the refresh lock. The second return reports whether this caller
// performed the rotation; a reused concurrent rotation was already
// announced by its owner.
func (c *Client) rotateSession(ctx context.Context, force bool) (*Session, bool, error) {
	before, err := c.store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if before == nil {
		return nil, false, ErrNoSession
	}
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	current, err := c.store.Load(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}
	if current == nil {
		return nil, false, ErrNoSession
	}
	// collapse concurrent refreshes: a rotation that completed while this
	// caller waited for the lock is reused instead of repeated
	if !force && !current.Expired(c.now()) {
		return current, false, nil
	}
	if force && current.AccessToken != before.AccessToken {
		return current, false, nil
	}
	if current.RefreshToken == "" {
		return nil, false, errors.New("session has no refresh token")
	}
	stale := &oauth2.Token{RefreshToken: current.RefreshToken}
	token, err := c.config.TokenSource(c.oauth2Context(ctx), stale).Token()
	if err != nil {
		return nil, false, asAPIError(err)
	}
	// preserve refresh token if provider omitted it
	if token.RefreshToken == "" {
		token.RefreshToken = current.RefreshToken
	}
	session := sessionFromToken(token, current.User)
	if err := c.store.Save(ctx, session); err != nil {
		return nil, false, fmt.Errorf("save session: %w", err)
	}
	return session, true, nil
}

// User fetches the authenticated identity from the service. When the fetch
// changes the stored session's user it persists the update and emits
// UserUpdated.
func (c *Client) User(ctx context.Context) (*User, error) {
	session, err := c.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoSession
	}
	user, err := c.fetchUser(ctx, session.AccessToken)
	if err != nil {
		return nil, err
	}
	if session.User == nil || *session.User != *user {
		session.User = user
		if err := c.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		c.emit(UserUpdated, session)
	}
	return user, nil
}

// OnAuthStateChange registers fn to receive every subsequent session change.
// The returned function unregisters it; after it runs no further deliveries
// reach fn.
func (c *Client) OnAuthStateChange(fn func(Event, *Session)) func() {
	id := uuid.New().String()
	c.subscribers.Put(id, fn)
	return func() {
		c.subscribers.Delete(id)
	}
}

// StartAutoRefresh rotates the session shortly before its credentials
// expire, emitting TokenRefreshed on every rotation. It runs in the
// background until ctx is done.
func (c *Client) StartAutoRefresh(ctx context.Context) {
	go c.autoRefresh(ctx)
}

func (c *Client) autoRefresh(ctx context.Context) {
	ticker := time.NewTicker(c.refreshTick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		session, err := c.store.Load(ctx)
		if err != nil || session == nil || session.RefreshToken == "" {
			continue
		}
		if !session.Expired(c.now()) {
			continue
		}
		// a failed rotation is retried on the next tick
		_, _ = c.refreshSession(ctx, false)
	}
}

func (c *Client) emit(event Event, session *Session) {
	c.subscribers.Range(func(_ string, fn func(Event, *Session)) bool {
		fn(event, session)
		return true
	})
}

func (c *Client) fetchUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url.Join(c.issuer, "userinfo"), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	var payload struct {
		Sub       string    `json:"sub"`
		Email     string    `json:"email"`
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &User{ID: payload.Sub, Email: payload.Email, CreatedAt: payload.CreatedAt}, nil
}

func (c *Client) revoke(ctx context.Context, refreshToken string) {
	payload, err := json.Marshal(map[string]string{"token": refreshToken})
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url.Join(c.issuer, "revoke"), bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return
	}
	_ = resp.Body.Close()
}

// oauth2Context routes token-endpoint calls through this client's HTTP
// client so the apikey header reaches the service.
func (c *Client) oauth2Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

type apiKeyTransport struct {
	apiKey string
	next   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := req.Clone(req.Context())
	next.Header.Set("apikey", t.apiKey)
	return t.next.RoundTrip(next)
}
