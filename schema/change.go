package schema

import (
	"fmt"
	"strings"
)

// ChangeType classifies the difference between two revisions of a document.
type ChangeType int

const (
	// ChangeNone means the field set and field types are unchanged.
	ChangeNone ChangeType = iota
	// ChangeAdditive means fields were added and nothing was removed or retyped.
	ChangeAdditive
	// ChangeBreaking means a field was removed or its type changed.
	ChangeBreaking
)

// String returns "none", "additive" or "breaking".
func (c ChangeType) String() string {
	switch c {
	case ChangeNone:
		return "none"
	case ChangeAdditive:
		return "additive"
	case ChangeBreaking:
		return "breaking"
	default:
		return fmt.Sprintf("ChangeType(%d)", int(c))
	}
}

// Bump returns the version component the change increments: "none", "minor"
// or "major".
func (c ChangeType) Bump() string {
	switch c {
	case ChangeAdditive:
		return "minor"
	case ChangeBreaking:
		return "major"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c ChangeType) MarshalText() ([]byte, error) {
	switch c {
	case ChangeNone, ChangeAdditive, ChangeBreaking:
		return []byte(c.String()), nil
	default:
		return nil, fmt.Errorf("unknown change type %d", int(c))
	}
}

// ParseChangeType accepts either vocabulary: none/additive/breaking or
// none/minor/major.
func ParseChangeType(s string) (ChangeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ChangeNone, nil
	case "additive", "minor":
		return ChangeAdditive, nil
	case "breaking", "major":
		return ChangeBreaking, nil
	default:
		return ChangeNone, fmt.Errorf("unknown change type %q", s)
	}
}
