// Package mock provides an in-memory implementation of the user store for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/facegate/facegate/internal/database"
)

// UserStore is an in-memory implementation of database.UserStore.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]database.User
	nextID int64

	// Error injection
	NextIDError    error
	InsertError    error
	GetError       error
	SelectAllError error
	DeleteError    error
	CountError     error
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[int64]database.User)}
}

// NextID reserves a fresh id.
func (m *UserStore) NextID(ctx context.Context) (int64, error) {
	if m.NextIDError != nil {
		return 0, m.NextIDError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID, nil
}

// Insert stores a user under its pre-reserved id.
func (m *UserStore) Insert(ctx context.Context, user database.User) error {
	if m.InsertError != nil {
		return m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

// Get returns a single user by id.
func (m *UserStore) Get(ctx context.Context, id int64) (*database.User, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &user, nil
}

// SelectAll returns every user in id order.
func (m *UserStore) SelectAll(ctx context.Context) ([]database.User, error) {
	if m.SelectAllError != nil {
		return nil, m.SelectAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Delete removes a user, reporting its image path.
func (m *UserStore) Delete(ctx context.Context, id int64) (string, error) {
	if m.DeleteError != nil {
		return "", m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return "", database.ErrNotFound
	}
	delete(m.users, id)
	return user.ImagePath, nil
}

// Count returns the number of stored users.
func (m *UserStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// Verify interface compliance.
var _ database.UserStore = (*UserStore)(nil)
