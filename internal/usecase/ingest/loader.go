package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prodisco/prodisco/internal/domain"
)

// Record is one product entry in the catalog file. Embeddings are never part
// of the file; they are generated during ingestion.
type Record struct {
	ProductID   int64   `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	InStock     bool    `json:"in_stock"`
	Brand       string  `json:"brand"`
}

// Product converts the record into a catalog entity without an embedding.
func (r Record) Product() *domain.Product {
	return &domain.Product{
		ID:          r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		InStock:     r.InStock,
		Brand:       r.Brand,
	}
}

// LoadFile reads a JSON array of product records.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return parseRecords(data)
}

func parseRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return records, nil
}
