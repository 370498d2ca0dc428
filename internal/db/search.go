package db

import "github.com/prodisco/prodisco/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search. Predicate conditions
// are applied as an exact pre-filter; only matching records enter the KNN.
type KNNQuery struct {
	IndexName    string
	Predicate    filter.Predicate
	Vector       []float32
	K            int
	VectorField  string
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Distance is the raw value reported
// by the index for the configured metric (squared Euclidean for L2).
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
