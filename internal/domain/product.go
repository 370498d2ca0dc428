package domain

import (
	"fmt"
	"strings"
)

// Product is a single catalog entry. The embedding is derived from Description
// and must match the configured vector dimension.
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Price       float64
	InStock     bool
	Brand       string
	Embedding   []float32
}

// Validate checks the scalar fields of a product record. The embedding
// dimension is checked separately against the store schema at insert time.
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product_id must be positive, got %d", p.ID)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %d: name is required", p.ID)
	}
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("product %d: description is required", p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("product %d: price must be non-negative, got %g", p.ID, p.Price)
	}
	return nil
}
