// Package catalog persists product records as hashes and manages the FT
// index over their embeddings.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/prodisco/prodisco/internal/db"
	"github.com/prodisco/prodisco/internal/domain"
)

// store is the consumer interface for catalog persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo implements usecase catalog persistence.
type Repo struct {
	store    store
	settings IndexSettings
}

// New creates a catalog repository.
func New(s store, settings IndexSettings) *Repo {
	return &Repo{store: s, settings: settings}
}

// EnsureSchema creates the product index if it does not exist. Safe to call
// on every startup; a concurrently created index is treated as success.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, domain.ProductIndexName)
	if err != nil {
		return fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(r.settings)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", domain.ProductIndexName, err)
	}
	return nil
}

// Upsert writes a single product hash.
func (r *Repo) Upsert(ctx context.Context, p *domain.Product) error {
	if err := r.checkDimension(p); err != nil {
		return err
	}
	key := domain.ProductKey(p.ID)
	if err := r.store.HSet(ctx, key, productToHash(p)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// UpsertBatch writes multiple product hashes in one pipelined round trip.
// Every embedding is dimension-checked before any write happens.
func (r *Repo) UpsertBatch(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, 0, len(products))
	for _, p := range products {
		if err := r.checkDimension(p); err != nil {
			return err
		}
		items = append(items, db.HashSetItem{
			Key:    domain.ProductKey(p.ID),
			Fields: productToHash(p),
		})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset batch of %d: %w", len(items), err)
	}
	return nil
}

// Get returns a product by ID.
func (r *Repo) Get(ctx context.Context, id int64) (domain.Product, error) {
	key := domain.ProductKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.Product{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return productFromHash(m)
}

// Delete removes a product.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	key := domain.ProductKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return domain.ErrProductNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// Count returns the number of indexed products.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, domain.ProductIndexName, "*")
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *Repo) checkDimension(p *domain.Product) error {
	if len(p.Embedding) != r.settings.Dimensions {
		return fmt.Errorf("%w: product %d embedding has %d dimensions, index expects %d",
			domain.ErrSchemaMismatch, p.ID, len(p.Embedding), r.settings.Dimensions)
	}
	return nil
}
