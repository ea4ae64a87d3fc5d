package core

import (
	"testing"

	"github.com/mfreitas/crisischat-server/internal/access"
)

func TestProfileLoginLogout(t *testing.T) {
	p := NewProfile("Guest-42")

	if p.LoggedIn || p.Name != "Guest-42" {
		t.Fatalf("fresh profile should be unauthenticated under its temporary name, got %+v", p)
	}

	p.Login("alice", access.Baixo)
	if !p.LoggedIn || p.Name != "alice" || p.Level != access.Baixo {
		t.Fatalf("unexpected profile after login: %+v", p)
	}
	if p.CurrentRoom != "CONVIDADO" {
		t.Fatalf("login must place the member in CONVIDADO, got %q", p.CurrentRoom)
	}

	p.Logout()
	if p.LoggedIn || p.CurrentRoom != "" {
		t.Fatalf("logout must clear tier and room, got %+v", p)
	}
	if p.Name != "Guest-42" {
		t.Fatalf("logout must restore the temporary name, got %q", p.Name)
	}
}
