package tcp

import (
	"errors"
	"sort"
	"sync"
)

// ErrAlreadyLoggedIn is returned when another live session holds the username.
var ErrAlreadyLoggedIn = errors.New("user already logged in")

// Sessions is the live-session registry: every accepted connection, plus the
// authenticated-username claims used by .online and the duplicate-login
// check. All mutation happens under one mutex so two racing logins resolve
// deterministically.
type Sessions struct {
	mu    sync.Mutex
	live  map[*Session]struct{}
	names map[string]*Session
}

// NewSessions constructs an empty registry.
func NewSessions() *Sessions {
	return &Sessions{
		live:  make(map[*Session]struct{}),
		names: make(map[string]*Session),
	}
}

// Add records a freshly accepted session.
func (s *Sessions) Add(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live[sess] = struct{}{}
}

// Remove drops a session and any username claim it still holds.
func (s *Sessions) Remove(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.live, sess)
	for name, owner := range s.names {
		if owner == sess {
			delete(s.names, name)
		}
	}
}

// IsLoggedIn reports whether any live session holds the username.
func (s *Sessions) IsLoggedIn(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.names[username]
	return ok
}

// Claim atomically binds a username to a session. The loser of a race gets
// ErrAlreadyLoggedIn and no state changes on its behalf.
func (s *Sessions) Claim(sess *Session, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, taken := s.names[username]; taken && owner != sess {
		return ErrAlreadyLoggedIn
	}
	s.names[username] = sess
	return nil
}

// Release drops a username claim if the session still owns it.
func (s *Sessions) Release(sess *Session, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner, ok := s.names[username]; ok && owner == sess {
		delete(s.names, username)
	}
}

// Online returns the count and sorted list of authenticated usernames.
func (s *Sessions) Online() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return len(names), names
}
