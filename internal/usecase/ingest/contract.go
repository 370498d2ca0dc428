package ingest

import (
	"context"

	"github.com/prodisco/prodisco/internal/domain"
)

// Catalog defines the persistence contract for ingestion.
type Catalog interface {
	EnsureSchema(ctx context.Context) error
	UpsertBatch(ctx context.Context, products []*domain.Product) error
	Count(ctx context.Context) (int, error)
}

// Embedder vectorizes product descriptions.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
