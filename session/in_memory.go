package session

import (
	"sort"
	"sync"

	"github.com/hupe1980/ragmesh/core"
)

// Store keeps conversations addressable by session id. Conversations are
// returned by reference, not cloned: core.Conversation is internally
// synchronized, and the runner must append to the same transcript the caller
// observes.
type Store interface {
	// GetOrCreate returns the conversation for the id, creating it if absent.
	// The second return reports whether a new conversation was created, so
	// callers can seed it (e.g. with a system prompt).
	GetOrCreate(sessionID string) (*core.Conversation, bool)

	// Get returns an existing conversation without creating one.
	Get(sessionID string) (*core.Conversation, bool)

	// Delete removes a conversation. Deleting an absent id is a no-op.
	Delete(sessionID string)

	// IDs returns the known session ids in sorted order.
	IDs() []string
}

// InMemoryStore is a volatile Store implementation keeping conversations in a
// process local map. It is safe for concurrent access and best suited for
// tests or ephemeral demo servers.
type InMemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*core.Conversation
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{convs: make(map[string]*core.Conversation)}
}

// GetOrCreate implements Store.
func (s *InMemoryStore) GetOrCreate(sessionID string) (*core.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.convs[sessionID]; ok {
		return conv, false
	}
	conv := core.NewConversation()
	s.convs[sessionID] = conv
	return conv, true
}

// Get implements Store.
func (s *InMemoryStore) Get(sessionID string) (*core.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.convs[sessionID]
	return conv, ok
}

// Delete implements Store.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.convs, sessionID)
}

// IDs implements Store.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.convs))
	for id := range s.convs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
