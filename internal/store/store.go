package store

import (
	"context"
	"errors"

	"github.com/mfreitas/crisischat-server/internal/access"
)

var (
	// ErrUserNotFound is returned when no credential matches the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when registering a duplicate username.
	ErrUserExists = errors.New("user already exists")
)

// User is one credential record: username, bcrypt hash, assigned tier.
// Usernames are unique.
type User struct {
	Name         string
	PasswordHash string
	Level        access.Level
}

// CredentialStore handles credential persistence.
type CredentialStore interface {
	// GetUser retrieves a credential record by username.
	GetUser(ctx context.Context, username string) (*User, error)

	// CreateUser persists a new credential record with an already-hashed
	// password. Returns ErrUserExists on duplicate usernames.
	CreateUser(ctx context.Context, username, passwordHash string, level access.Level) error
}

// RoomLog handles per-room append-only message history.
type RoomLog interface {
	// Append adds one line to the room's history.
	Append(ctx context.Context, room, line string) error

	// Tail returns up to n of the newest history lines, oldest first.
	Tail(ctx context.Context, room string, n int) ([]string, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	CredentialStore
	RoomLog

	// Close releases the underlying storage.
	Close() error
}
