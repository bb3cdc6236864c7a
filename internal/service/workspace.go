package service

import (
	"sync"

	"github.com/set-night/sketchbot/internal/storage"
)

// Workspace is everything one client sees: its persisted session and
// history plus the in-memory sketch and chat transcript.
type Workspace struct {
	Sessions   *SessionStore
	Auth       *AuthService
	Generation *GenerationService
	Assistant  *AssistantService
}

func NewWorkspace(backend *Backend, store storage.Store, notifier Notifier) *Workspace {
	sessions := NewSessionStore(store)
	return &Workspace{
		Sessions:   sessions,
		Auth:       NewAuthService(backend, sessions, notifier),
		Generation: NewGenerationService(backend, sessions, notifier),
		Assistant:  NewAssistantService(backend, sessions, notifier),
	}
}

// WorkspaceRegistry lazily creates one Workspace per key and keeps it for
// the life of the process.
type WorkspaceRegistry[K comparable] struct {
	mu      sync.Mutex
	items   map[K]*Workspace
	factory func(K) *Workspace
}

func NewWorkspaceRegistry[K comparable](factory func(K) *Workspace) *WorkspaceRegistry[K] {
	return &WorkspaceRegistry[K]{
		items:   make(map[K]*Workspace),
		factory: factory,
	}
}

func (r *WorkspaceRegistry[K]) Get(key K) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ws, ok := r.items[key]; ok {
		return ws
	}
	ws := r.factory(key)
	r.items[key] = ws
	return ws
}

func (r *WorkspaceRegistry[K]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}
