package access

// RequestType classifies an emergency alert request.
type RequestType int

const (
	Evacuation RequestType = iota
	Communication
	Resources
)

// RequestTypes lists every alert type.
var RequestTypes = []RequestType{Evacuation, Communication, Resources}

func (t RequestType) String() string {
	switch t {
	case Evacuation:
		return "EVACUATION"
	case Communication:
		return "COMMUNICATION"
	case Resources:
		return "RESOURCES"
	default:
		return "UNKNOWN"
	}
}

// minimumToRequest holds the lowest tier allowed to file each alert type.
var minimumToRequest = map[RequestType]Level{
	Evacuation:    Medio,
	Communication: Baixo,
	Resources:     Convidado,
}

// minimumToResolve holds the lowest tier allowed to accept each alert type.
var minimumToResolve = map[RequestType]Level{
	Evacuation:    Alto,
	Communication: Medio,
	Resources:     Baixo,
}

// CanEnter reports whether a member at the given level may enter the room of
// the given tier. Access cascades downward: a tier enters its own room and
// every strictly lower one, never a higher one.
func CanEnter(level, room Level) bool {
	return level.Outranks(room)
}

// CanRequest reports whether the level may file an alert of the given type.
func CanRequest(level Level, t RequestType) bool {
	min, ok := minimumToRequest[t]
	return ok && level.Outranks(min)
}

// CanResolve reports whether the level may accept an alert of the given type.
func CanResolve(level Level, t RequestType) bool {
	min, ok := minimumToResolve[t]
	return ok && level.Outranks(min)
}
