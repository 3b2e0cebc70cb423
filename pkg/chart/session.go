package chart

import (
	"sync"

	"github.com/google/uuid"
)

// Ticket tags an asynchronous fetch with the selection that started it.
type Ticket struct {
	ID         uuid.UUID
	Generation uint64
	Selection  Selection
}

// Session hands out tickets and accepts only the completion of the most
// recent one, so a slow response for a superseded selection cannot
// overwrite newer state.
type Session struct {
	mu     sync.Mutex
	gen    uint64
	latest uuid.UUID
}

// Begin issues a ticket for a fetch started for sel. Any earlier ticket
// becomes stale.
func (s *Session) Begin(sel Selection) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.latest = uuid.New()
	return Ticket{ID: s.latest, Generation: s.gen, Selection: sel}
}

// Accept reports whether t is the latest ticket.
func (s *Session) Accept(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t.Generation == s.gen && t.ID == s.latest
}

// Generation returns the number of tickets issued.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}
