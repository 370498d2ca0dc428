// Package search holds the query/result model of the product search path.
package search

import (
	"fmt"
	"strings"

	"github.com/prodisco/prodisco/internal/domain"
)

const (
	// DefaultTopK is the result count when the caller does not specify one.
	DefaultTopK = 5
	// MaxTopK caps the result count of a single query.
	MaxTopK = 50
)

// Query is the ephemeral input of one search call. It is constructed per
// request and never persisted.
type Query struct {
	Text        string
	TopK        int
	MaxPrice    *float64
	Category    string
	Brand       string
	InStockOnly bool
}

// Validate checks the query invariants. All violations wrap
// domain.ErrInvalidQuery so the transport can map them to a client error.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: query text is empty", domain.ErrInvalidQuery)
	}
	if q.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrInvalidQuery, q.TopK)
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		return fmt.Errorf("%w: max_price must be non-negative, got %g", domain.ErrInvalidQuery, *q.MaxPrice)
	}
	return nil
}

// Limit returns the effective result count, capped at MaxTopK.
func (q *Query) Limit() int {
	if q.TopK > MaxTopK {
		return MaxTopK
	}
	return q.TopK
}
