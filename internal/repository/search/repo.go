// Package search executes KNN queries against the product index and maps
// hits back into catalog records.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prodisco/prodisco/internal/db"
	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
	"github.com/prodisco/prodisco/internal/domain/search/filter"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// returnFields lists the scalar attributes fetched per hit. The embedding is
// deliberately excluded; callers only need the record and its distance.
var returnFields = []string{
	"product_id", "name", "description", "category", "price", "in_stock", "brand",
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN runs a K-nearest-neighbor query over product embeddings with
// the predicate applied as an exact pre-filter.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, predicate filter.Predicate, topK int,
) ([]domsearch.ScoredProduct, error) {
	q := &db.KNNQuery{
		IndexName:    domain.ProductIndexName,
		Predicate:    predicate,
		Vector:       vector,
		K:            topK,
		VectorField:  "embedding",
		ReturnFields: returnFields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrStoreUnavailable, err)
	}

	return parseKNNResults(sr)
}

// parseKNNResults converts db.SearchResult into scored products.
func parseKNNResults(sr *db.SearchResult) ([]domsearch.ScoredProduct, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	products := make([]domsearch.ScoredProduct, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		p, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("parse hit %s: %w", entry.Key, err)
		}
		products = append(products, domsearch.ScoredProduct{
			Product:   p,
			Distance:  entry.Distance,
			Relevance: domsearch.Relevance(entry.Distance),
		})
	}

	return products, nil
}

// parseEntry reconstructs a product from the returned hash fields.
func parseEntry(entry db.SearchEntry) (domain.Product, error) {
	id, err := strconv.ParseInt(entry.Fields["product_id"], 10, 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse product_id %q: %w", entry.Fields["product_id"], err)
	}

	var price float64
	if raw := entry.Fields["price"]; raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Product{}, fmt.Errorf("parse price %q: %w", raw, err)
		}
	}

	return domain.Product{
		ID:          id,
		Name:        entry.Fields["name"],
		Description: entry.Fields["description"],
		Category:    entry.Fields["category"],
		Price:       price,
		InStock:     entry.Fields["in_stock"] == "true",
		Brand:       entry.Fields["brand"],
	}, nil
}
