package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	pollbase "github.com/pollbase/pollbase-go"
	"github.com/pollbase/pollbase-go/client/auth"
	"github.com/pollbase/pollbase-go/client/auth/mock"
)

type service struct {
	options *Options
	logger  *slog.Logger
	out     io.Writer
}

func newService(options *Options, logger *slog.Logger, out io.Writer) *service {
	return &service{options: options, logger: logger, out: out}
}

// Run dispatches the selected command.
func (s *service) Run(ctx context.Context) error {
	if s.options.Args.Command == "serve" {
		return s.serve(ctx)
	}
	client, err := s.client(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	switch s.options.Args.Command {
	case "register":
		return s.register(ctx, client)
	case "login":
		return s.login(ctx, client)
	case "logout":
		return s.logout(ctx, client)
	case "whoami":
		return s.whoami(ctx, client)
	case "watch":
		return s.watch(ctx, client)
	case "polls":
		return s.polls(ctx, client)
	default:
		return fmt.Errorf("unknown command: %v", s.options.Args.Command)
	}
}

func (s *service) client(ctx context.Context) (*pollbase.Client, error) {
	return pollbase.NewClient(ctx, &pollbase.ClientOptions{
		URL:            s.options.URL,
		APIKey:         s.options.APIKey,
		CredentialsURL: s.options.Credentials,
		EncryptionKey:  s.options.Key,
		SessionFile:    s.options.SessionFile,
		AutoRefresh:    s.options.Args.Command == "watch",
	})
}

func (s *service) credentials() (auth.Credentials, error) {
	if s.options.Email == "" || s.options.Password == "" {
		return auth.Credentials{}, errors.New("email and password are required")
	}
	return auth.Credentials{Email: s.options.Email, Password: s.options.Password}, nil
}

func (s *service) register(ctx context.Context, client *pollbase.Client) error {
	credentials, err := s.credentials()
	if err != nil {
		return err
	}
	session, err := client.Auth.SignUp(ctx, credentials)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "registered %v\n", session.User.Email)
	return nil
}

func (s *service) login(ctx context.Context, client *pollbase.Client) error {
	credentials, err := s.credentials()
	if err != nil {
		return err
	}
	session, err := client.Auth.SignInWithPassword(ctx, credentials.Email, credentials.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "signed in as %v, session expires %v\n",
		session.User.Email, session.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (s *service) logout(ctx context.Context, client *pollbase.Client) error {
	if err := client.Auth.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "signed out")
	return nil
}

func (s *service) whoami(ctx context.Context, client *pollbase.Client) error {
	user, err := client.Auth.User(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		fmt.Fprintln(s.out, "not signed in")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%v (%v), registered %v\n",
		user.Email, user.ID, user.CreatedAt.Format(time.RFC3339))
	return nil
}

// watch keeps the process alive and prints every session change until
// interrupted. Credential rotation runs in the background, so an expiring
// session shows up as a TOKEN_REFRESHED event.
func (s *service) watch(ctx context.Context, client *pollbase.Client) error {
	<-client.Sessions.Ready()
	current, _ := client.Sessions.Current()
	s.logger.Info("watching session changes", "signedIn", current != nil)

	defer client.Auth.OnAuthStateChange(func(event auth.Event, session *auth.Session) {
		email := ""
		if session != nil && session.User != nil {
			email = session.User.Email
		}
		s.logger.Info("session changed", "event", string(event), "email", email)
	})()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	<-signalCtx.Done()
	return nil
}

type poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *service) polls(ctx context.Context, client *pollbase.Client) error {
	var polls []poll
	err := client.DB.From("polls").
		Select("id", "question", "status", "created_at").
		Eq("status", "open").
		Order("created_at", true).
		Limit(20).
		Do(ctx, &polls)
	if err != nil {
		return err
	}
	if len(polls) == 0 {
		fmt.Fprintln(s.out, "no open polls")
		return nil
	}
	for _, item := range polls {
		fmt.Fprintf(s.out, "%v\t%v\n", item.ID, item.Question)
	}
	return nil
}

// serve runs a local fake of the Pollbase auth stack for development, with
// a pre-registered demo account.
func (s *service) serve(ctx context.Context) error {
	backend, err := mock.NewAuthService()
	if err != nil {
		return err
	}
	account := backend.AddUser("demo@example.com", "demo")
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%v", s.options.Port))
	if err != nil {
		return err
	}
	base := "http://" + listener.Addr().String()
	backend.Issuer = base + "/auth/v1"
	backend.APIKey = s.options.APIKey

	mux := http.NewServeMux()
	mux.Handle("/auth/v1/", http.StripPrefix("/auth/v1", backend.Handler()))
	server := &http.Server{Handler: mux}

	fmt.Fprintf(s.out, "auth stack listening at %v, sign in with %v / %v\n",
		base, account.Email, account.Password)

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	select {
	case err := <-errCh:
		return err
	case <-signalCtx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
