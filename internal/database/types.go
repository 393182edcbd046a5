// Package database defines the storage types and interfaces for the enrolled
// face catalog, plus the embedding wire codec shared by every backend.
package database

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an operation targets a user id with no
// matching row.
var ErrNotFound = errors.New("user not found")

// User is one enrolled identity.
type User struct {
	ID           int64
	Username     string
	Embedding    []float64
	ImagePath    string // empty when no artifact is recorded
	RegisteredAt time.Time
}

// UserStore persists enrolled identities. Implementations must keep ids
// stable once assigned and must never reuse an id after deletion.
type UserStore interface {
	// NextID reserves a fresh id from the store's sequence without
	// inserting a row. The id is burned even if the caller never inserts.
	NextID(ctx context.Context) (int64, error)

	// Insert stores a user whose ID was previously reserved via NextID.
	Insert(ctx context.Context, user User) error

	// Get returns a single user, or ErrNotFound.
	Get(ctx context.Context, id int64) (*User, error)

	// SelectAll returns every enrolled user in id order.
	SelectAll(ctx context.Context) ([]User, error)

	// Delete removes a user and reports its recorded image path so the
	// caller can remove the artifact. Returns ErrNotFound when no row
	// matched.
	Delete(ctx context.Context, id int64) (imagePath string, err error)

	// Count returns the number of enrolled users.
	Count(ctx context.Context) (int, error)
}
