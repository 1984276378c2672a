package session

import (
	"context"
	"sync"

	"github.com/hupe1980/fashionagent/core"
)

// InMemoryStore is a volatile SessionStore implementation storing
// states in a process local map. It is safe for concurrent access and best
// suited for tests or single-process deployments. States are cloned on load
// and save to prevent external mutation of internal state.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[string]*core.ConversationState
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{states: make(map[string]*core.ConversationState)}
}

// Load returns a clone of the stored state or a fresh empty state.
func (s *InMemoryStore) Load(ctx context.Context, sessionID string) (*core.ConversationState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[sessionID]; ok {
		return st.Clone(), nil
	}
	return core.NewConversationState(sessionID), nil
}

// Save stores a clone of the provided state.
func (s *InMemoryStore) Save(ctx context.Context, state *core.ConversationState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if state == nil || state.SessionID == "" {
		return core.Errorf("session.save", core.KindInvalidInput, "session id must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.SessionID] = state.Clone()
	return nil
}

// Delete removes a session. Unknown ids are ignored.
func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
