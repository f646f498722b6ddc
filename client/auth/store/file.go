package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/afs"

	"github.com/pollbase/pollbase-go/client/auth"
)

// File persists the session as a JSON document at a storage URL, e.g.
// file:///home/me/.pollbase/session.json. It is a lightweight way to keep a
// sign-in across process restarts in CLI or single-host services.
type File struct {
	URL string
	fs  afs.Service
	mu  sync.Mutex
}

var _ auth.SessionStore = (*File)(nil)

// NewFile creates a session store persisting at the given storage URL.
// Plain paths are treated as file:// URLs; tests typically use mem://.
func NewFile(URL string) *File {
	return &File{
		URL: URL,
		fs:  afs.New(),
	}
}

func (f *File) Load(ctx context.Context) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.fs.Exists(ctx, f.URL)
	if err != nil {
		return nil, fmt.Errorf("check session file: %w", err)
	}
	if !ok {
		return nil, nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	session := &auth.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	return session, nil
}

func (f *File) Save(ctx context.Context, session *auth.Session) error {
	if session == nil {
		return f.Clear(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	// sessions hold credentials; keep the file owner-only
	if err := f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ok, err := f.fs.Exists(ctx, f.URL)
	if err != nil {
		return fmt.Errorf("check session file: %w", err)
	}
	if !ok {
		return nil
	}
	return f.fs.Delete(ctx, f.URL)
}
