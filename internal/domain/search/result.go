package search

import "github.com/prodisco/prodisco/internal/domain"

// ScoredProduct pairs a catalog record with its raw distance and display relevance.
type ScoredProduct struct {
	Product   domain.Product
	Distance  float64
	Relevance float64
}

// Result is the ranked output of one search call. Products are ordered by
// non-increasing relevance, ties broken by product ID ascending.
// TotalResults counts what was actually returned, not catalog-wide matches.
type Result struct {
	Query        string
	Products     []ScoredProduct
	TotalResults int
}
