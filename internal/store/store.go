// Package store holds the shared session state for assistdesk: the project
// list and active project, the assistant directory and selection, per-assistant
// chat histories, loading flags, and the application session token.
//
// The store is constructed once per process and injected into every service;
// there is no package-level singleton. All mutation goes through the service
// layer, which in turn uses the accessor methods here, so consumers never
// observe a half-applied switch or a torn session update. Read accessors
// return copies.
package store

import (
	"sync"

	"assistdesk/pkg/desktypes"
)

// Store is the single shared state holder. Every method is safe for
// concurrent use.
type Store struct {
	mu sync.RWMutex

	testMode     bool
	sessionToken string

	projects        []desktypes.Project
	activeProjectID string

	assistants          []desktypes.Assistant
	selectedAssistantID string

	sessions map[string][]desktypes.ChatMessage

	loading map[string]bool

	listeners    map[int]func()
	nextListener int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sessions:  make(map[string][]desktypes.ChatMessage),
		loading:   make(map[string]bool),
		listeners: make(map[int]func()),
	}
}

// SetTestMode toggles deterministic id and timestamp generation for tests.
func (s *Store) SetTestMode(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testMode = enabled
}

// IsTestMode reports whether deterministic test mode is enabled.
func (s *Store) IsTestMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.testMode
}

// SessionToken returns the application bearer token, empty if unauthenticated.
func (s *Store) SessionToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionToken
}

// SetSessionToken stores the application bearer token.
func (s *Store) SetSessionToken(token string) {
	s.mu.Lock()
	s.sessionToken = token
	s.mu.Unlock()
	s.notify()
}

// ClearSessionToken drops the application bearer token. The gateway calls
// this when the backend signals that re-authentication is required.
func (s *Store) ClearSessionToken() {
	s.mu.Lock()
	s.sessionToken = ""
	s.mu.Unlock()
	s.notify()
}

// Loading reports the named loading flag.
func (s *Store) Loading(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading[name]
}

// SetLoading sets the named loading flag.
func (s *Store) SetLoading(name string, value bool) {
	s.mu.Lock()
	if value {
		s.loading[name] = true
	} else {
		delete(s.loading, name)
	}
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers a listener invoked after every store mutation. The
// returned function removes the listener. Listeners run synchronously on the
// mutating goroutine and must not mutate the store themselves.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
