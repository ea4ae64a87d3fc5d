package core

import (
	"github.com/mfreitas/crisischat-server/internal/access"
)

// Profile holds the per-connection user state. It is created when the
// control connection is accepted, mutated only by that connection's own
// command handling, and discarded when the connection closes.
//
// Invariant: LoggedIn is true iff Level and CurrentRoom are both set.
type Profile struct {
	// TemporaryName is assigned at connect time and never changes for the
	// lifetime of the connection.
	TemporaryName string

	// Name is the temporary name until login, then the authenticated
	// username, restored to the temporary name on logout.
	Name string

	Level       access.Level
	LoggedIn    bool
	CurrentRoom string
}

// NewProfile builds an unauthenticated profile for a freshly accepted
// connection.
func NewProfile(temporaryName string) *Profile {
	return &Profile{
		TemporaryName: temporaryName,
		Name:          temporaryName,
	}
}

// Login binds the profile to an authenticated identity. Every member starts
// out in the CONVIDADO room.
func (p *Profile) Login(username string, level access.Level) {
	p.Name = username
	p.Level = level
	p.LoggedIn = true
	p.CurrentRoom = access.Convidado.String()
}

// Logout restores the temporary identity and clears tier and room.
func (p *Profile) Logout() {
	p.Name = p.TemporaryName
	p.Level = access.Convidado
	p.LoggedIn = false
	p.CurrentRoom = ""
}
