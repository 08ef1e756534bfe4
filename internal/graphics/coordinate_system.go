package graphics

import (
	"fmt"
	"strings"
)

// CoordinateSystem is the handedness convention shared by cameras, viewport
// math and event positions. RHS keeps +Y up, LHS has +Y pointing down the
// screen in orthographic and viewport space. Perspective projections keep +Y
// up in both.
type CoordinateSystem int8

const (
	CoordinateSystemLHS     CoordinateSystem = -1
	CoordinateSystemDefault CoordinateSystem = 0
	CoordinateSystemRHS     CoordinateSystem = 1
)

// UpDirection is +1 for RHS and -1 for LHS.
func (cs CoordinateSystem) UpDirection() float32 {
	if cs == CoordinateSystemLHS {
		return -1
	}
	return 1
}

// Resolve returns cs, or def when cs is CoordinateSystemDefault.
func (cs CoordinateSystem) Resolve(def CoordinateSystem) CoordinateSystem {
	if cs == CoordinateSystemDefault {
		return def
	}
	return cs
}

func (cs CoordinateSystem) String() string {
	switch cs {
	case CoordinateSystemLHS:
		return "lhs"
	case CoordinateSystemRHS:
		return "rhs"
	}
	return "default"
}

func (cs CoordinateSystem) MarshalText() ([]byte, error) {
	return []byte(cs.String()), nil
}

func (cs *CoordinateSystem) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "lhs", "left":
		*cs = CoordinateSystemLHS
	case "rhs", "right":
		*cs = CoordinateSystemRHS
	case "", "default", "auto":
		*cs = CoordinateSystemDefault
	default:
		return fmt.Errorf("unknown coordinate system %q", string(b))
	}
	return nil
}
