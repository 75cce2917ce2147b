package authflow

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// stateStore tracks the state parameters issued to in-flight authorization
// redirects so the callback can verify the response belongs to a login this
// process started.
type stateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

func newStateStore() *stateStore {
	return &stateStore{
		states: make(map[string]time.Time),
	}
}

// Issue generates a secure random state and records it with the given TTL.
func (s *stateStore) Issue(ttl time.Duration) (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	state := hex.EncodeToString(bytes)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupLocked()
	s.states[state] = time.Now().Add(ttl)

	return state, nil
}

// ValidateAndConsume reports whether the state was issued by this store and
// has not expired. A state can be consumed at most once.
func (s *stateStore) ValidateAndConsume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.states[state]
	if !exists {
		return false
	}
	delete(s.states, state)

	return time.Now().Before(expiry)
}

func (s *stateStore) cleanupLocked() {
	now := time.Now()
	for state, expiry := range s.states {
		if now.After(expiry) {
			delete(s.states, state)
		}
	}
}
