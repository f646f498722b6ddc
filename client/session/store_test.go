package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollbase/pollbase-go/client/auth"
)

// fakeSource is a controllable Source: the initial fetch is gated by a
// channel and notifications are force-delivered by the test.
type fakeSource struct {
	fetchFunc func(ctx context.Context) (*auth.Session, error)

	mu           sync.Mutex
	callback     func(auth.Event, *auth.Session)
	subscribed   int
	unsubscribed int
}

func (f *fakeSource) CurrentSession(ctx context.Context) (*auth.Session, error) {
	return f.fetchFunc(ctx)
}

func (f *fakeSource) OnAuthStateChange(fn func(auth.Event, *auth.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed++
	f.callback = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubscribed++
		f.callback = nil
	}
}

func (f *fakeSource) emit(event auth.Event, session *auth.Session) {
	f.mu.Lock()
	fn := f.callback
	f.mu.Unlock()
	if fn != nil {
		fn(event, session)
	}
}

func (f *fakeSource) counts() (subscribed, unsubscribed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed, f.unsubscribed
}

// gatedSource blocks the initial fetch until release is closed.
func gatedSource(result *auth.Session, err error) (*fakeSource, chan struct{}) {
	release := make(chan struct{})
	src := &fakeSource{
		fetchFunc: func(ctx context.Context) (*auth.Session, error) {
			select {
			case <-release:
				return result, err
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
	return src, release
}

func waitReady(t *testing.T, store *Store) {
	t.Helper()
	select {
	case <-store.Ready():
	case <-time.After(time.Second):
		t.Fatal("store did not finish loading")
	}
}

func TestStore_InitialFetch(t *testing.T) {
	session := &auth.Session{AccessToken: "token-a", User: &auth.User{ID: "u1", Email: "u1@example.com"}}
	src, release := gatedSource(session, nil)

	store := New(context.Background(), src, WithTimeout(time.Second))
	defer store.Close()

	current, loading := store.Current()
	require.Nil(t, current)
	require.True(t, loading)
	select {
	case <-store.Ready():
		t.Fatal("ready before initial fetch resolved")
	default:
	}

	close(release)
	waitReady(t, store)

	current, loading = store.Current()
	require.Same(t, session, current)
	require.False(t, loading)
}

func TestStore_InitialFetchAbsent(t *testing.T) {
	src, release := gatedSource(nil, nil)
	store := New(context.Background(), src)
	defer store.Close()

	close(release)
	waitReady(t, store)

	current, loading := store.Current()
	require.Nil(t, current)
	require.False(t, loading)
}

func TestStore_InitialFetchFailure(t *testing.T) {
	src, release := gatedSource(nil, errors.New("service unreachable"))
	store := New(context.Background(), src)
	defer store.Close()

	close(release)
	waitReady(t, store)

	// a failed fetch degrades to unauthenticated, it is not surfaced
	current, loading := store.Current()
	require.Nil(t, current)
	require.False(t, loading)
}

func TestStore_NotificationsReplaceSession(t *testing.T) {
	src, release := gatedSource(nil, nil)
	store := New(context.Background(), src)
	defer store.Close()

	close(release)
	waitReady(t, store)

	sessions := []*auth.Session{
		{AccessToken: "t1", User: &auth.User{ID: "u1"}},
		{AccessToken: "t2", User: &auth.User{ID: "u2"}},
		nil, // sign-out
		{AccessToken: "t3", User: &auth.User{ID: "u3"}},
	}
	for _, next := range sessions {
		src.emit(auth.SignedIn, next)
		current, loading := store.Current()
		assert.Same(t, next, current)
		assert.False(t, loading, "loading must never revert to true")
	}
}

func TestStore_NotificationBeforeFetchWins(t *testing.T) {
	fetched := &auth.Session{AccessToken: "stale", User: &auth.User{ID: "u1"}}
	src, release := gatedSource(fetched, nil)
	store := New(context.Background(), src)
	defer store.Close()

	notified := &auth.Session{AccessToken: "fresh", User: &auth.User{ID: "u2"}}
	src.emit(auth.SignedIn, notified)

	current, loading := store.Current()
	require.Same(t, notified, current)
	require.True(t, loading, "loading resolves only with the initial fetch")

	// the fetch result is a snapshot from before the notification; it must
	// not overwrite the newer state, regardless of arrival order
	close(release)
	waitReady(t, store)

	current, loading = store.Current()
	require.Same(t, notified, current)
	require.False(t, loading)
}

func TestStore_CloseCancelsFetch(t *testing.T) {
	var canceled atomic.Bool
	src := &fakeSource{
		fetchFunc: func(ctx context.Context) (*auth.Session, error) {
			<-ctx.Done()
			canceled.Store(true)
			return nil, ctx.Err()
		},
	}
	store := New(context.Background(), src)
	store.Close()

	waitReady(t, store)
	require.Eventually(t, canceled.Load, time.Second, time.Millisecond)

	current, loading := store.Current()
	require.Nil(t, current)
	require.False(t, loading)
}

func TestStore_CloseIdempotent(t *testing.T) {
	src, release := gatedSource(nil, nil)
	close(release)
	store := New(context.Background(), src)
	waitReady(t, store)

	store.Close()
	store.Close()

	subscribed, unsubscribed := src.counts()
	require.Equal(t, 1, subscribed)
	require.Equal(t, 1, unsubscribed)
}

func TestStore_DeliveryAfterCloseDropped(t *testing.T) {
	src, release := gatedSource(&auth.Session{AccessToken: "t1"}, nil)
	close(release)
	store := New(context.Background(), src)
	waitReady(t, store)

	before, _ := store.Current()

	// capture the raw callback so delivery can be forced past the disposer
	src.mu.Lock()
	raw := src.callback
	src.mu.Unlock()

	store.Close()
	raw(auth.SignedIn, &auth.Session{AccessToken: "late"})

	current, loading := store.Current()
	require.Same(t, before, current)
	require.False(t, loading)
}

func TestStore_Timeout(t *testing.T) {
	src, _ := gatedSource(&auth.Session{AccessToken: "never"}, nil)
	store := New(context.Background(), src, WithTimeout(10*time.Millisecond))
	defer store.Close()

	waitReady(t, store)

	current, loading := store.Current()
	require.Nil(t, current)
	require.False(t, loading)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	src, release := gatedSource(nil, nil)
	close(release)
	store := New(context.Background(), src)
	defer store.Close()
	waitReady(t, store)

	const notifications = 100
	last := &auth.Session{AccessToken: fmt.Sprintf("t%d", notifications-1)}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				session, loading := store.Current()
				if loading {
					t.Error("loading reverted to true")
					return
				}
				_ = session
			}
		}()
	}

	for i := 0; i < notifications; i++ {
		next := &auth.Session{AccessToken: fmt.Sprintf("t%d", i)}
		if i == notifications-1 {
			next = last
		}
		src.emit(auth.TokenRefreshed, next)
	}
	close(stop)
	wg.Wait()

	current, _ := store.Current()
	require.Same(t, last, current)
}
