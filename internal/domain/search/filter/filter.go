// Package filter models the scalar predicate applied alongside vector search.
// A predicate is a conjunction of conditions; every condition must hold for a
// record to be a candidate. Evaluation is exact, never approximate.
package filter

import "fmt"

// MaxConditions bounds the number of conditions in a predicate.
const MaxConditions = 16

// Predicate is a conjunction of scalar conditions.
type Predicate struct {
	conditions []Condition
}

// New validates and creates a Predicate.
func New(conditions ...Condition) (Predicate, error) {
	if len(conditions) > MaxConditions {
		return Predicate{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Predicate{conditions: conditions}, nil
}

// Conditions returns the conjunction members.
func (p Predicate) Conditions() []Condition { return p.conditions }

// IsEmpty reports whether the predicate imposes no constraint.
func (p Predicate) IsEmpty() bool { return len(p.conditions) == 0 }

// Condition is a single clause: either an exact tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with inclusive and exclusive boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// AtMost creates a Range with an inclusive upper bound.
func AtMost(max float64) Range {
	return Range{lte: &max}
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
