package search

import (
	"fmt"
	"math"
)

// Relevance converts a raw vector distance into a display score via
// 100/(1+d), rounded to one decimal place. The result is bounded in (0, 100]
// and strictly decreasing in d; it is a display heuristic, not a calibrated
// probability, and its absolute values are not comparable across embedding
// models or metrics.
func Relevance(distance float64) float64 {
	return math.Round(1000/(1+distance)) / 10
}

// FormatRelevance renders a raw distance as a percentage string, e.g. "92.3%".
func FormatRelevance(distance float64) string {
	return fmt.Sprintf("%.1f%%", 100/(1+distance))
}
