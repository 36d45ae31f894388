package layout

import (
	"testing"

	"github.com/matzehuels/anchorlayout/pkg/solver"
)

func TestPriorityTiers(t *testing.T) {
	tests := []struct {
		p    Priority
		want solver.Strength
	}{
		{PriorityRequired, solver.Required},
		{PriorityHigh, solver.Strong},
		{PriorityMedium, solver.Medium},
		{PriorityLowest, solver.Weak},
		{0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			if got := tt.p.Strength(); got != tt.want {
				t.Errorf("Priority(%v).Strength() = %v, want %v", float64(tt.p), got, tt.want)
			}
		})
	}
}

func TestPriorityMonotonic(t *testing.T) {
	prev := Priority(1).Strength()
	for p := Priority(1.25); p <= 1000; p += 0.25 {
		s := p.Strength()
		if s < prev {
			t.Fatalf("Strength(%v) = %v < Strength(%v) = %v", p, s, p-0.25, prev)
		}
		prev = s
	}
	if Priority(999).IsRequired() {
		t.Error("Priority(999).IsRequired() = true, want false")
	}
	if !PriorityRequired.IsRequired() {
		t.Error("PriorityRequired.IsRequired() = false")
	}
}

func TestPriorityBetweenTiersIsStrictlyOrdered(t *testing.T) {
	ordered := []Priority{1, 150, 250, 499, 500, 501, 749, 750, 751, 999, 1000}
	for i := 1; i < len(ordered); i++ {
		lo, hi := ordered[i-1].Strength(), ordered[i].Strength()
		if !(lo < hi) {
			t.Errorf("Strength(%v) = %v, want < Strength(%v) = %v", ordered[i-1], lo, ordered[i], hi)
		}
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{"required", PriorityRequired, false},
		{"High", PriorityHigh, false},
		{"very_low", PriorityVeryLow, false},
		{"lowest", PriorityLowest, false},
		{"620", 620, false},
		{" 12.5 ", 12.5, false},
		{"-1", 0, true},
		{"urgent", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
