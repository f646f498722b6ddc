package pollbase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/viant/afs/url"
	"github.com/viant/scy/auth/authorizer"

	"github.com/pollbase/pollbase-go/client/auth"
	"github.com/pollbase/pollbase-go/client/auth/store"
	authtransport "github.com/pollbase/pollbase-go/client/auth/transport"
	"github.com/pollbase/pollbase-go/client/rest"
	"github.com/pollbase/pollbase-go/client/session"
)

// ClientOptions defines options for configuring a Pollbase client.
type ClientOptions struct {
	URL    string `yaml:"url" json:"url"  short:"u" long:"url" description:"pollbase project url"`
	APIKey string `yaml:"apiKey,omitempty" json:"apiKey,omitempty"  short:"k" long:"api-key" description:"pollbase project api key"`

	// CredentialsURL points at a scy-secured OAuth2 client config holding
	// the client id and secret the token endpoint expects.
	CredentialsURL string `yaml:"credentialsURL,omitempty" json:"credentialsURL,omitempty"  short:"c" long:"credentials" description:"oauth2 client config file"`
	EncryptionKey  string `yaml:"encryptionKey,omitempty" json:"encryptionKey,omitempty"  long:"key" description:"encryption key"`

	SessionFile string `yaml:"sessionFile,omitempty" json:"sessionFile,omitempty"  short:"s" long:"session-file" description:"where to persist the session"`
	AutoRefresh bool   `yaml:"autoRefresh,omitempty" json:"autoRefresh,omitempty"  long:"auto-refresh" description:"rotate credentials before they expire"`

	// Store injects a custom session store; it wins over SessionFile.
	Store auth.SessionStore `yaml:"-" json:"-"`
}

// Init normalizes options that accept shorthand values.
func (o *ClientOptions) Init() {
	o.URL = strings.TrimRight(o.URL, "/")
}

// Client is the umbrella Pollbase client: authentication, the data API and a
// session store kept current by auth state changes. Close releases the
// session subscription and stops the background refresh.
type Client struct {
	Auth       *auth.Client
	DB         *rest.Client
	Sessions   *session.Store
	HTTPClient *http.Client

	cancel context.CancelFunc
}

// NewClient creates a Pollbase client configured via ClientOptions. ctx
// bounds construction-time work such as loading client credentials; the
// client's own background work is stopped by Close, not by ctx.
func NewClient(ctx context.Context, options *ClientOptions) (*Client, error) {
	if options == nil || options.URL == "" {
		return nil, errors.New("url is required")
	}
	options.Init()

	var authOptions []auth.Option
	if options.APIKey != "" {
		authOptions = append(authOptions, auth.WithAPIKey(options.APIKey))
	}
	sessionStore := options.Store
	if sessionStore == nil && options.SessionFile != "" {
		sessionStore = store.NewFile(options.SessionFile)
	}
	if sessionStore != nil {
		authOptions = append(authOptions, auth.WithStore(sessionStore))
	}
	if options.CredentialsURL != "" {
		clientID, clientSecret, err := options.loadClientCredentials(ctx)
		if err != nil {
			return nil, err
		}
		authOptions = append(authOptions, auth.WithClientCredentials(clientID, clientSecret))
	}
	authClient, err := auth.New(url.Join(options.URL, "auth/v1"), authOptions...)
	if err != nil {
		return nil, err
	}

	var transportOptions []authtransport.Option
	if options.APIKey != "" {
		transportOptions = append(transportOptions, authtransport.WithAPIKey(options.APIKey))
	}
	roundTripper, err := authtransport.New(authClient, transportOptions...)
	if err != nil {
		return nil, err
	}
	httpClient := &http.Client{Transport: roundTripper}

	// the session subscription and auto refresh follow the client's
	// lifetime, not the construction context
	clientCtx, cancel := context.WithCancel(context.Background())
	if options.AutoRefresh {
		authClient.StartAutoRefresh(clientCtx)
	}
	return &Client{
		Auth:       authClient,
		DB:         rest.New(url.Join(options.URL, "rest/v1"), httpClient),
		Sessions:   session.New(clientCtx, authClient),
		HTTPClient: httpClient,
		cancel:     cancel,
	}, nil
}

// Close tears the client down: the session store stops receiving changes
// and background refresh exits. Safe to call more than once.
func (c *Client) Close() {
	c.Sessions.Close()
	c.cancel()
}

// loadClientCredentials resolves the token-endpoint client id and secret
// from a scy-secured OAuth2 config.
func (o *ClientOptions) loadClientCredentials(ctx context.Context) (string, string, error) {
	configURL := o.CredentialsURL
	if o.EncryptionKey != "" {
		configURL += "|" + o.EncryptionKey
	}
	anAuthorizer := authorizer.New()
	oauthCfg := &authorizer.OAuthConfig{ConfigURL: configURL}
	if err := anAuthorizer.EnsureConfig(ctx, oauthCfg); err != nil {
		return "", "", fmt.Errorf("failed to load oauth2 config %q: %w", o.CredentialsURL, err)
	}
	return oauthCfg.Config.ClientID, oauthCfg.Config.ClientSecret, nil
}
