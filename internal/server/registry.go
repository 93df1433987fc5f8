package server

import (
	"errors"
	"sync"

	"github.com/hailam/chessrules/internal/session"
)

// ErrMatchNotFound indicates an unknown match ID.
var ErrMatchNotFound = errors.New("match not found")

// Registry holds the live matches by ID.
type Registry struct {
	matches map[string]*entry
	mu      sync.RWMutex
}

type entry struct {
	match *session.Match
	saved bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{matches: make(map[string]*entry)}
}

// Add registers m under its ID.
func (r *Registry) Add(m *session.Match) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := m.ID()
	r.matches[id] = &entry{match: m}
	return id
}

// Get returns the match with the given ID.
func (r *Registry) Get(id string) (*session.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return e.match, nil
}

// Len returns the number of registered matches.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// markSaved reports whether id was already marked and marks it.
func (r *Registry) markSaved(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.matches[id]
	if !ok {
		return true
	}
	was := e.saved
	e.saved = true
	return was
}
