package search

import (
	"context"
	"testing"

	"github.com/prodisco/prodisco/internal/db"
	"github.com/prodisco/prodisco/internal/domain/search/filter"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func mustMatch(t *testing.T, key, value string) filter.Condition {
	t.Helper()
	c, err := filter.NewMatch(key, value)
	if err != nil {
		t.Fatalf("NewMatch: %v", err)
	}
	return c
}

func mustPredicate(t *testing.T, conditions ...filter.Condition) filter.Predicate {
	t.Helper()
	p, err := filter.New(conditions...)
	if err != nil {
		t.Fatalf("New predicate: %v", err)
	}
	return p
}

func productFields(id, name, category, price, inStock, brand string) map[string]string {
	return map[string]string{
		"product_id":  id,
		"name":        name,
		"description": "test description",
		"category":    category,
		"price":       price,
		"in_stock":    inStock,
		"brand":       brand,
	}
}
