package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service provides authentication operations over a credential store.
type Service struct {
	store store.CredentialStore
}

// NewService creates a new authentication service.
func NewService(credentials store.CredentialStore) *Service {
	return &Service{store: credentials}
}

// Register creates a new user at the CONVIDADO tier. Elevated tiers are
// assigned by an operator, never through self-registration.
func (s *Service) Register(ctx context.Context, username, password string) error {
	return s.RegisterAt(ctx, username, password, access.Convidado)
}

// RegisterAt creates a new user with the given tier and a hashed password.
func (s *Service) RegisterAt(ctx context.Context, username, password string, level access.Level) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 || strings.ContainsAny(username, ", ") {
		return ErrInvalidUsername
	}
	if len(password) < 4 {
		return ErrInvalidPassword
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.store.CreateUser(ctx, username, hashedPassword, level); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return ErrUserExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Verify validates credentials and returns the user's assigned tier.
func (s *Service) Verify(ctx context.Context, username, password string) (access.Level, error) {
	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return access.Convidado, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return access.Convidado, ErrInvalidCredentials
	}

	return user.Level, nil
}
