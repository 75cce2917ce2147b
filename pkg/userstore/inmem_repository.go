package userstore

import (
	"context"
	"sync"
)

// InMemoryUserRepository implements UserRepository using an in-memory map.
// Data lives for the lifetime of the process; there is no durable backend.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]UserRecord
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users: make(map[string]UserRecord),
	}
}

// Save stores a user record keyed by profile ID, overwriting any existing
// record for the same ID.
func (r *InMemoryUserRepository) Save(ctx context.Context, accessToken, refreshToken string, profile Profile) (UserRecord, error) {
	if profile.ID == "" {
		return UserRecord{}, ErrFailedToSaveUser
	}

	user := UserRecord{
		ID:           profile.ID,
		Username:     profile.Username,
		Slug:         profile.Slug,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user

	return user, nil
}

// Get looks up a user record by ID.
func (r *InMemoryUserRepository) Get(ctx context.Context, id string) (UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return UserRecord{}, ErrUserNotFound
	}

	return user, nil
}

// Delete removes a user record by ID.
func (r *InMemoryUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
	return nil
}
