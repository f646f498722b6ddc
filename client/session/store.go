package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pollbase/pollbase-go/client/auth"
)

// Source is the slice of the auth client the store depends on: a one-shot
// current-session lookup and a change subscription.
type Source interface {
	CurrentSession(ctx context.Context) (*auth.Session, error)
	OnAuthStateChange(fn func(auth.Event, *auth.Session)) func()
}

var _ Source = (*auth.Client)(nil)

// Store holds the latest known session together with a loading flag and
// keeps both current without polling. It is meant to be constructed once at
// application start and handed to everything that needs to know "who is
// signed in right now".
//
// Construction subscribes to session changes and launches a single
// asynchronous fetch of the current session; Current answers from memory
// from then on. A change notification that arrives while the initial fetch
// is still in flight wins over the fetch result, so the logically latest
// state is kept regardless of network timing.
type Store struct {
	source  Source
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	session *auth.Session
	loading bool
	applied bool
	closed  bool

	ready       chan struct{}
	cancelFetch context.CancelFunc
	unsubscribe func()
}

// New creates a Store backed by source. The initial fetch is bounded by ctx
// (plus WithTimeout, when set); the subscription lives until Close.
func New(ctx context.Context, source Source, options ...Option) *Store {
	ret := &Store{
		source:  source,
		logger:  slog.New(slog.DiscardHandler),
		loading: true,
		ready:   make(chan struct{}),
	}
	for _, opt := range options {
		opt(ret)
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	ret.cancelFetch = cancel
	// subscribe before fetching so no change can slip between the two
	ret.unsubscribe = source.OnAuthStateChange(ret.onChange)
	go func() {
		if ret.timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, ret.timeout)
			defer cancel()
		}
		ret.fetch(fetchCtx)
	}()
	return ret
}

// Current returns the latest known session and whether the initial
// resolution is still pending. It never blocks and never touches the
// network.
func (s *Store) Current() (*auth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.loading
}

// Ready returns a channel closed once loading has become false.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Close releases the subscription and cancels an in-flight initial fetch.
// Notifications delivered after Close are dropped. Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelFetch()
	// the pending resolution will never land; unblock Ready waiters
	s.finishLoading()
	unsubscribe := s.unsubscribe
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// fetch resolves the initial session exactly once. A fetch failure degrades
// to "unauthenticated, loading complete"; it is not surfaced to readers.
func (s *Store) fetch(ctx context.Context) {
	session, err := s.source.CurrentSession(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		s.logger.Warn("initial session fetch failed", "error", err)
		s.finishLoading()
		return
	}
	// a notification that arrived first is logically newer than this
	// snapshot; keep it
	if !s.applied {
		s.session = session
	}
	s.finishLoading()
}

func (s *Store) onChange(_ auth.Event, session *auth.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.applied = true
	s.session = session
}

// finishLoading flips loading false exactly once; callers hold s.mu.
func (s *Store) finishLoading() {
	if !s.loading {
		return
	}
	s.loading = false
	close(s.ready)
}
