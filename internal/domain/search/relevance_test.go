package search

import (
	"math"
	"testing"
)

func TestRelevance_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		want     float64
	}{
		{"zero distance", 0, 100},
		{"unit distance", 1, 50},
		{"small distance", 0.0833, 92.3},
		{"large distance", 99, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Relevance(tt.distance)
			if got != tt.want {
				t.Errorf("Relevance(%g) = %g, want %g", tt.distance, got, tt.want)
			}
			if got <= 0 || got > 100 {
				t.Errorf("Relevance(%g) = %g, out of (0, 100]", tt.distance, got)
			}
		})
	}
}

func TestRelevance_MonotonicallyDecreasing(t *testing.T) {
	distances := []float64{0, 0.01, 0.5, 1, 2, 10, 100}
	for i := 1; i < len(distances); i++ {
		lo, hi := distances[i-1], distances[i]
		// Compare the unrounded transform: rounding may collapse close values.
		if 100/(1+lo) <= 100/(1+hi) {
			t.Errorf("relevance not decreasing between d=%g and d=%g", lo, hi)
		}
	}
}

func TestRelevance_Rounding(t *testing.T) {
	// 100/(1+0.085) = 92.165...; must round to one decimal place.
	got := Relevance(0.085)
	if math.Abs(got-92.2) > 1e-9 {
		t.Errorf("Relevance(0.085) = %g, want 92.2", got)
	}
}

func TestFormatRelevance(t *testing.T) {
	tests := []struct {
		distance float64
		want     string
	}{
		{0, "100.0%"},
		{1, "50.0%"},
		{0.0833, "92.3%"},
	}

	for _, tt := range tests {
		if got := FormatRelevance(tt.distance); got != tt.want {
			t.Errorf("FormatRelevance(%g) = %q, want %q", tt.distance, got, tt.want)
		}
	}
}
