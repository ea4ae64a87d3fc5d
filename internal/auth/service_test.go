package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/store/file"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := file.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return NewService(st)
}

func TestRegister_RejectsInvalidUsername(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "ab", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Should be validated after trimming whitespace.
	if err := svc.Register(ctx, " ab ", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}

	// Commas would corrupt the line-oriented credential file.
	if err := svc.Register(ctx, "al,ice", "password123"); !errors.Is(err, ErrInvalidUsername) {
		t.Fatalf("expected ErrInvalidUsername, got %v", err)
	}
}

func TestRegister_RejectsInvalidPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "abc", "123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestRegister_TrimsUsernameAndCreatesUser(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, " alice ", "password123"); err != nil {
		t.Fatalf("expected registration success, got %v", err)
	}

	// Should collide because the stored username is trimmed.
	if err := svc.Register(ctx, "alice", "password123"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegister_DefaultsToConvidado(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "newbie", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	level, err := svc.Verify(ctx, "newbie", "password123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if level != access.Convidado {
		t.Fatalf("self-registered user must be CONVIDADO, got %s", level)
	}
}

func TestVerify_ReturnsAssignedTier(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.RegisterAt(ctx, "chief", "password123", access.Alto); err != nil {
		t.Fatalf("RegisterAt: %v", err)
	}

	level, err := svc.Verify(ctx, "chief", "password123")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if level != access.Alto {
		t.Fatalf("Verify returned %s, want ALTO", level)
	}
}

func TestVerify_RejectsBadPassword(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	if err := svc.Register(ctx, "alice", "password123"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Verify(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Verify(ctx, "ghost", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
