// internal/glucose/glucose.go

// Package glucose implements the threshold-driven glucose response engine:
// risk scoring, curve-shape classification, per-nutrient explanations, and
// daily-target checks. Every calculator is a pure function of its inputs
// and the thresholds captured at construction; nothing here performs I/O or
// holds mutable state, so concurrent use against one loaded configuration
// is safe.
package glucose

import (
	"fmt"

	"mcp-meal-risk/internal/models"
)

// InvalidInputError reports a caller-side violation of an input contract,
// such as a negative macro value or a zero meal count.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

func checkMacros(m models.Macros) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"carbs_g", m.CarbsG},
		{"gi", m.GI},
		{"fat_g", m.FatG},
		{"protein_g", m.ProteinG},
		{"fiber_g", m.FiberG},
		{"sugar_g", m.SugarG},
		{"calories", m.Calories},
	}
	for _, f := range fields {
		if f.value < 0 {
			return &InvalidInputError{Reason: fmt.Sprintf("%s must not be negative, got %g", f.name, f.value)}
		}
	}
	return nil
}
