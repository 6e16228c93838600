package stboundary

import (
	"go.viam.com/planning/logging"
)

// BoundaryType is the decision attached to an obstacle boundary.
type BoundaryType int

// The closed set of boundary types.
const (
	Unknown BoundaryType = iota
	Stop
	Follow
	Yield
	Overtake
	KeepClear
)

// LookupTypeName returns the display label of t and whether t is a recognized type.
func LookupTypeName(t BoundaryType) (string, bool) {
	switch t {
	case Unknown:
		return "UNKNOWN", true
	case Stop:
		return "STOP", true
	case Follow:
		return "FOLLOW", true
	case Yield:
		return "YIELD", true
	case Overtake:
		return "OVERTAKE", true
	case KeepClear:
		return "KEEP_CLEAR", true
	default:
		return "UNKNOWN", false
	}
}

// TypeName maps t to its display label. Unrecognized values render as UNKNOWN with a warning.
func TypeName(t BoundaryType) string {
	name, ok := LookupTypeName(t)
	if !ok {
		logging.Global().Warnw("unknown boundary type, treated as UNKNOWN", "type", int(t))
	}
	return name
}

func (t BoundaryType) String() string {
	return TypeName(t)
}

// BoundaryTypeFromName parses a display label back into a type.
func BoundaryTypeFromName(name string) (BoundaryType, bool) {
	for _, t := range []BoundaryType{Unknown, Stop, Follow, Yield, Overtake, KeepClear} {
		if n, _ := LookupTypeName(t); n == name {
			return t, true
		}
	}
	return Unknown, false
}
