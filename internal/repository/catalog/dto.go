package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/prodisco/prodisco/internal/domain"
)

// Hash field names. They double as FT index attribute names, so renaming one
// requires an index rebuild.
const (
	fieldID          = "product_id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldPrice       = "price"
	fieldInStock     = "in_stock"
	fieldBrand       = "brand"
	fieldEmbedding   = "embedding"
)

// productToHash flattens a product into hash fields. The embedding is stored
// as little-endian float32 bytes, the layout FT.SEARCH expects for KNN.
func productToHash(p *domain.Product) map[string]string {
	return map[string]string{
		fieldID:          strconv.FormatInt(p.ID, 10),
		fieldName:        p.Name,
		fieldDescription: p.Description,
		fieldCategory:    p.Category,
		fieldPrice:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		fieldInStock:     strconv.FormatBool(p.InStock),
		fieldBrand:       p.Brand,
		fieldEmbedding:   vectorToBytes(p.Embedding),
	}
}

// productFromHash reconstructs a product from hash fields.
func productFromHash(m map[string]string) (domain.Product, error) {
	id, err := strconv.ParseInt(m[fieldID], 10, 64)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse product_id %q: %w", m[fieldID], err)
	}

	var price float64
	if raw := m[fieldPrice]; raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Product{}, fmt.Errorf("parse price %q: %w", raw, err)
		}
	}

	return domain.Product{
		ID:          id,
		Name:        m[fieldName],
		Description: m[fieldDescription],
		Category:    m[fieldCategory],
		Price:       price,
		InStock:     m[fieldInStock] == "true",
		Brand:       m[fieldBrand],
		Embedding:   bytesToVector(m[fieldEmbedding]),
	}, nil
}

// vectorToBytes serializes []float32 to a little-endian binary string.
func vectorToBytes(vec []float32) string {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
