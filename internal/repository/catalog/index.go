package catalog

import (
	"fmt"

	"github.com/prodisco/prodisco/internal/db"
	"github.com/prodisco/prodisco/internal/domain"
)

// IndexSettings selects the vector index layout. Flat is exact brute-force
// search over block-allocated vectors; HNSW trades exactness for speed.
type IndexSettings struct {
	Algorithm       string // "flat" or "hnsw"
	Dimensions      int
	FlatBlockSize   int
	HNSWM           int
	HNSWEFConstruct int
}

// buildIndex creates the product index definition: scalar fields for exact
// pre-filtering plus the embedding vector field.
func buildIndex(s IndexSettings) (*db.IndexDefinition, error) {
	b := db.NewIndex(domain.ProductIndexName).
		Prefix(domain.ProductKeyPrefix).
		Numeric(fieldID).
		Numeric(fieldPrice).
		Tag(fieldCategory).
		Tag(fieldBrand).
		Tag(fieldInStock)

	switch s.Algorithm {
	case "", "flat":
		b = b.VectorFlat(fieldEmbedding, s.Dimensions, db.DistanceL2, s.FlatBlockSize)
	case "hnsw":
		b = b.VectorHNSW(fieldEmbedding, s.Dimensions, db.DistanceL2, s.HNSWM, s.HNSWEFConstruct)
	default:
		return nil, fmt.Errorf("unknown index algorithm: %q", s.Algorithm)
	}

	return b.Build()
}
