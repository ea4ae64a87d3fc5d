package access

import (
	"errors"
	"strings"
)

// ErrUnknownLevel is returned when a level name does not match any tier.
var ErrUnknownLevel = errors.New("unknown access level")

// Level is one of the four ordered access tiers. Higher values mean higher
// trust: ALTO outranks MEDIO outranks BAIXO outranks CONVIDADO. The zero
// value is CONVIDADO, so an unset level never grants anything.
type Level int

const (
	Convidado Level = iota
	Baixo
	Medio
	Alto
)

// Levels lists every tier from highest to lowest trust.
var Levels = []Level{Alto, Medio, Baixo, Convidado}

func (l Level) String() string {
	switch l {
	case Alto:
		return "ALTO"
	case Medio:
		return "MEDIO"
	case Baixo:
		return "BAIXO"
	case Convidado:
		return "CONVIDADO"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a tier name to its Level, case-insensitively.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "ALTO":
		return Alto, nil
	case "MEDIO":
		return Medio, nil
	case "BAIXO":
		return Baixo, nil
	case "CONVIDADO":
		return Convidado, nil
	default:
		return Convidado, ErrUnknownLevel
	}
}

// Outranks reports whether l sits at or above other in the trust order.
func (l Level) Outranks(other Level) bool {
	return l >= other
}
