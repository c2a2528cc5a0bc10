package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGlycemicLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    Macros
		want float64
	}{
		{"typical meal", Macros{CarbsG: 50, GI: 70}, 35},
		{"zero carbs", Macros{CarbsG: 0, GI: 70}, 0},
		{"unknown gi", Macros{CarbsG: 50, GI: 0}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, tt.m.GlycemicLoad(), 1e-9)
		})
	}
}
