package search

import (
	"context"

	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
	"github.com/prodisco/prodisco/internal/domain/search/filter"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	SearchKNN(
		ctx context.Context, vector []float32, predicate filter.Predicate, topK int,
	) ([]domsearch.ScoredProduct, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
