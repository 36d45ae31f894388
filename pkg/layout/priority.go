package layout

import (
	"strconv"
	"strings"

	"github.com/matzehuels/anchorlayout/pkg/errors"
	"github.com/matzehuels/anchorlayout/pkg/solver"
)

// Priority is the author-facing weight of a constraint on a 0..1000 scale.
// Values above 1000 are taken as native solver strengths.
type Priority float64

// Named priority tiers.
const (
	PriorityRequired Priority = 1000
	PriorityHigh     Priority = 750
	PriorityMedium   Priority = 500
	PriorityLow      Priority = 250
	PriorityVeryLow  Priority = 150
	PriorityLowest   Priority = 1
)

// Default hugging and compression resistance, matching the usual platform
// defaults.
const (
	DefaultHugging     = PriorityLow
	DefaultCompression = PriorityHigh
)

// intrinsicPriority weights the suggested intrinsic-size and baseline
// values. Edit variables cannot be required, so this is the strongest
// priority below PriorityRequired.
const intrinsicPriority Priority = 999

var tierNames = map[string]Priority{
	"required": PriorityRequired,
	"high":     PriorityHigh,
	"medium":   PriorityMedium,
	"low":      PriorityLow,
	"very_low": PriorityVeryLow,
	"verylow":  PriorityVeryLow,
	"lowest":   PriorityLowest,
	"weak":     PriorityLowest,
}

// ParsePriority parses a tier name or a number.
func ParsePriority(s string) (Priority, error) {
	if p, ok := tierNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid priority: %q", s)
	}
	return Priority(f), nil
}

// Strength maps the priority to a solver strength.
//
// The tiers map exactly: 1000 to Required, 750 to Strong, 500 to Medium and
// 1 to Weak. Between tiers the three strength components are blended
// linearly, so the mapping is monotonically non-decreasing.
func (p Priority) Strength() solver.Strength {
	switch {
	case p > PriorityRequired:
		return solver.Clip(solver.Strength(p))
	case p == PriorityRequired:
		return solver.Required
	case p >= PriorityHigh:
		t := float64(p-PriorityHigh) / float64(PriorityRequired-PriorityHigh)
		return solver.CreateStrength(1+999*t, 1000*t, 1000*t)
	case p >= PriorityMedium:
		t := float64(p-PriorityMedium) / float64(PriorityHigh-PriorityMedium)
		return solver.CreateStrength(t, 1-t, 0)
	case p >= PriorityLowest:
		t := float64(p-PriorityLowest) / float64(PriorityMedium-PriorityLowest)
		return solver.CreateStrength(0, t, 1-t)
	case p > 0:
		return solver.CreateStrength(0, 0, float64(p))
	}
	return 0
}

// IsRequired reports whether the priority maps to a required strength.
func (p Priority) IsRequired() bool { return p.Strength().IsRequired() }

// String returns the tier name for named tiers and the number otherwise.
func (p Priority) String() string {
	switch p {
	case PriorityRequired:
		return "required"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityVeryLow:
		return "very_low"
	case PriorityLowest:
		return "lowest"
	}
	return strconv.FormatFloat(float64(p), 'g', -1, 64)
}
