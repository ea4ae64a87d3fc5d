// Package file implements the store contracts on the flat-file layout the
// relay shares with its operators: a line-oriented credential file
// (username,passwordHash,tier) and one append-only text log per room tier.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/store"
)

const (
	usersFile = "users.txt"
	chatsDir  = "chats"
)

// FileStore implements store.Store on plain text files under a data directory.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	logs map[string]*os.File
}

// New creates the data directory layout and opens the store.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Join(dir, chatsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	users, err := os.OpenFile(filepath.Join(dir, usersFile), os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create users file: %w", err)
	}
	users.Close()

	return &FileStore{
		dir:  dir,
		logs: make(map[string]*os.File),
	}, nil
}

// Close closes every open room log.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, f := range s.logs {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.logs = make(map[string]*os.File)
	return firstErr
}

// ==== CredentialStore implementation ====

// GetUser retrieves a credential record by username.
func (s *FileStore) GetUser(_ context.Context, username string) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUserLocked(username)
}

// getUserLocked scans the credential file. Callers must hold s.mu.
func (s *FileStore) getUserLocked(username string) (*store.User, error) {
	f, err := os.Open(s.usersPath())
	if err != nil {
		return nil, fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ",")
		if len(parts) != 3 || parts[0] != username {
			continue
		}
		level, err := access.ParseLevel(parts[2])
		if err != nil {
			return nil, fmt.Errorf("credential record for %q: %w", username, err)
		}
		return &store.User{
			Name:         parts[0],
			PasswordHash: parts[1],
			Level:        level,
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan users file: %w", err)
	}
	return nil, store.ErrUserNotFound
}

// CreateUser appends a new credential record. Returns store.ErrUserExists
// when the username is taken.
func (s *FileStore) CreateUser(_ context.Context, username, passwordHash string, level access.Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Existence check and append run under one lock so two concurrent
	// registrations cannot both slip in the same username.
	if _, err := s.getUserLocked(username); err == nil {
		return store.ErrUserExists
	} else if err != store.ErrUserNotFound {
		return err
	}

	f, err := os.OpenFile(s.usersPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open users file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s,%s,%s\n", username, passwordHash, level); err != nil {
		return fmt.Errorf("append user: %w", err)
	}
	return nil
}

// ==== RoomLog implementation ====

// Append adds one line to the room's history file.
func (s *FileStore) Append(_ context.Context, room, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.roomLog(room)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		return fmt.Errorf("append to room log: %w", err)
	}
	return nil
}

// Tail returns up to n of the newest history lines, oldest first. A room
// with no history yields an empty slice.
func (s *FileStore) Tail(_ context.Context, room string, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.roomLogPath(room))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open room log: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan room log: %w", err)
	}

	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

func (s *FileStore) usersPath() string {
	return filepath.Join(s.dir, usersFile)
}

func (s *FileStore) roomLogPath(room string) string {
	return filepath.Join(s.dir, chatsDir, room+".txt")
}

// roomLog returns the open append handle for a room, creating it on first use.
// Callers must hold s.mu.
func (s *FileStore) roomLog(room string) (*os.File, error) {
	if f, ok := s.logs[room]; ok {
		return f, nil
	}
	f, err := os.OpenFile(s.roomLogPath(room), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open room log: %w", err)
	}
	s.logs[room] = f
	return f, nil
}
