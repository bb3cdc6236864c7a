package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/set-night/sketchbot/internal/config"
	"github.com/set-night/sketchbot/internal/storage"
)

type note struct {
	ok  bool
	msg string
}

// recordingNotifier captures notifications for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) Success(_ context.Context, msg string) { n.add(true, msg) }
func (n *recordingNotifier) Error(_ context.Context, msg string)   { n.add(false, msg) }

func (n *recordingNotifier) add(ok bool, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{ok: ok, msg: msg})
}

func (n *recordingNotifier) last() note {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

// fakeBackend is an httptest server that counts the requests it receives.
type fakeBackend struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeBackend(t *testing.T, h http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		h(w, r)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) backend() *Backend {
	return NewBackend(config.NewEndpoints(fb.URL), 0)
}

func newTestWorkspace(b *Backend) (*Workspace, storage.Store, *recordingNotifier) {
	store := storage.NewMemory().Namespace("test")
	n := &recordingNotifier{}
	return NewWorkspace(b, store, n), store, n
}

// unreachableBackend points at a server that has already been shut down.
func unreachableBackend(t *testing.T) *Backend {
	return unreachableBackendAt(t, "")
}

// unreachableBackendAt is unreachableBackend with a base path appended, so
// the dial error text carries whatever digits the path holds.
func unreachableBackendAt(t *testing.T, basePath string) *Backend {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return NewBackend(config.NewEndpoints(url+basePath), 0)
}
