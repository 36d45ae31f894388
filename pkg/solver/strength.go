package solver

import "strconv"

// Strength is the weight of a constraint. Strengths are built from three
// components (strong, medium, weak), each clamped to [0, 1000], so that any
// amount of a weaker component never outweighs one unit of a stronger one.
type Strength float64

// CreateStrength combines the three strength components into a Strength.
func CreateStrength(strong, medium, weak float64) Strength {
	return createWeighted(strong, medium, weak, 1)
}

func createWeighted(a, b, c, w float64) Strength {
	var s float64
	s += clamp(a*w, 0, 1000) * 1_000_000
	s += clamp(b*w, 0, 1000) * 1_000
	s += clamp(c*w, 0, 1000)
	return Strength(s)
}

// Canonical strengths.
var (
	Required = CreateStrength(1000, 1000, 1000)
	Strong   = CreateStrength(1, 0, 0)
	Medium   = CreateStrength(0, 1, 0)
	Weak     = CreateStrength(0, 0, 1)
)

// Clip limits s to the range [0, Required].
func Clip(s Strength) Strength {
	return Strength(clamp(float64(s), 0, float64(Required)))
}

// IsRequired reports whether s is (at least) Required.
func (s Strength) IsRequired() bool { return s >= Required }

// String returns the tier name for canonical strengths and the raw value
// otherwise.
func (s Strength) String() string {
	switch s {
	case Required:
		return "required"
	case Strong:
		return "strong"
	case Medium:
		return "medium"
	case Weak:
		return "weak"
	}
	return strconv.FormatFloat(float64(s), 'g', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
