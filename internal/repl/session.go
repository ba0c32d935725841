// Package repl implements the interactive shell: a session holding at most
// one open store, a dispatcher enforcing command preconditions and arity,
// and the line-oriented loop that drives them.
package repl

import (
	"log/slog"
	"sync"

	"ldbrepl/internal/storage"
)

// Session is the single mutable slot the shell operates on: either no
// store is open, or exactly one is. The zero value is a closed session
// ready for use.
//
// Methods are safe for concurrent use; the interrupt path may release the
// session while the loop is mid-command.
type Session struct {
	mu    sync.Mutex
	store storage.Store
}

// Store returns the currently bound store, or nil when the session is
// closed.
func (s *Session) Store() storage.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Bind replaces the bound store with store, releasing any previous one.
func (s *Session) Bind(store storage.Store) {
	s.mu.Lock()
	previous := s.store
	s.store = store
	s.mu.Unlock()
	closeStore(previous)
}

// Release closes the bound store, if any. Releasing a closed session is a
// no-op, so exit, close, and interrupt can all call it unconditionally.
func (s *Session) Release() {
	s.mu.Lock()
	previous := s.store
	s.store = nil
	s.mu.Unlock()
	closeStore(previous)
}

func closeStore(store storage.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}
