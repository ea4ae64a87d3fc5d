package room

import (
	"strings"

	"github.com/mfreitas/crisischat-server/internal/access"
)

// Registry is the immutable tier -> multicast group mapping. The same table
// is compiled into the client, which joins the group directly for chat I/O,
// so the two sides must agree bit for bit.
type Registry struct {
	groups map[access.Level]string
}

// NewRegistry builds the fixed four-room table.
func NewRegistry() Registry {
	return Registry{
		groups: map[access.Level]string{
			access.Convidado: "230.0.0.1:5000",
			access.Baixo:     "230.0.0.1:5001",
			access.Medio:     "230.0.0.1:5002",
			access.Alto:      "230.0.0.1:5003",
		},
	}
}

// Lookup returns the "address:port" of a tier's multicast group.
func (r Registry) Lookup(level access.Level) (string, bool) {
	addr, ok := r.groups[level]
	return addr, ok
}

// Endpoint returns the group address split into host and port, the shape the
// control channel's "chat <address> <port>" line needs.
func (r Registry) Endpoint(level access.Level) (host, port string, ok bool) {
	addr, ok := r.groups[level]
	if !ok {
		return "", "", false
	}
	host, port, found := strings.Cut(addr, ":")
	if !found {
		return "", "", false
	}
	return host, port, true
}
