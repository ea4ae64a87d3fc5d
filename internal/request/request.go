package request

import (
	"errors"
	"strings"

	"github.com/mfreitas/crisischat-server/internal/access"
)

// ErrUnknownType is returned when a wire token maps to no alert type.
var ErrUnknownType = errors.New("unknown request type")

// Request is one open alert: who asked, and for what.
type Request struct {
	Requester string
	Type      access.RequestType
}

// ParseType maps the wire tokens (evac, comms, res) to an alert type,
// case-insensitively.
func ParseType(token string) (access.RequestType, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "EVAC":
		return access.Evacuation, nil
	case "COMMS":
		return access.Communication, nil
	case "RES":
		return access.Resources, nil
	default:
		return 0, ErrUnknownType
	}
}
