package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/domain"
)

// --- Mocks ---

type mockCatalog struct {
	mu            sync.Mutex
	schemaErr     error
	upsertErr     error
	schemaCalls   int
	upsertedIDs   []int64
	upsertBatches int
	count         int
	countErr      error
}

func (m *mockCatalog) EnsureSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schemaCalls++
	return m.schemaErr
}

func (m *mockCatalog) UpsertBatch(_ context.Context, products []*domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertBatches++
	for _, p := range products {
		m.upsertedIDs = append(m.upsertedIDs, p.ID)
	}
	return nil
}

func (m *mockCatalog) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, m.countErr
}

type mockBatchEmbedder struct {
	mu       sync.Mutex
	err      error
	dim      int
	calls    int
	shortBy  int // return this many fewer vectors than requested
	embedded []string
}

func (m *mockBatchEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim)}, m.err
}

func (m *mockBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.embedded = append(m.embedded, texts...)
	n := len(texts) - m.shortBy
	embeddings := make([][]float32, n)
	for i := range embeddings {
		embeddings[i] = make([]float32, m.dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: embeddings, TotalTokens: 5 * n}, nil
}

func testRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			ProductID:   int64(i + 1),
			Name:        "Product",
			Description: "A useful product",
			Category:    "Misc",
			Price:       9.99,
			InStock:     true,
			Brand:       "Acme",
		}
	}
	return records
}

// --- Tests ---

func TestRun_IngestsAllRecords(t *testing.T) {
	catalog := &mockCatalog{count: 10}
	embed := &mockBatchEmbedder{dim: 4}
	svc := New(catalog, embed, 2, 3, zap.NewNop())

	report, err := svc.Run(context.Background(), testRecords(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Total != 10 || report.Succeeded != 10 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if catalog.schemaCalls != 1 {
		t.Errorf("EnsureSchema calls = %d, want 1", catalog.schemaCalls)
	}
	if len(catalog.upsertedIDs) != 10 {
		t.Errorf("upserted %d products, want 10", len(catalog.upsertedIDs))
	}
	// 10 records with batch size 3 -> 4 batches
	if catalog.upsertBatches != 4 {
		t.Errorf("upsert batches = %d, want 4", catalog.upsertBatches)
	}
}

func TestRun_InvalidRecordsReportedNotIngested(t *testing.T) {
	catalog := &mockCatalog{}
	embed := &mockBatchEmbedder{dim: 4}
	svc := New(catalog, embed, 1, 10, zap.NewNop())

	records := testRecords(3)
	records[1].Name = "" // invalid

	report, err := svc.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Succeeded != 2 || report.Failed != 1 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[1].Err == nil {
		t.Error("expected error result for invalid record")
	}
	if len(catalog.upsertedIDs) != 2 {
		t.Errorf("upserted %d products, want 2", len(catalog.upsertedIDs))
	}
	// The invalid record's description must not be embedded.
	if len(embed.embedded) != 2 {
		t.Errorf("embedded %d texts, want 2", len(embed.embedded))
	}
}

func TestRun_SchemaFailureAbortsRun(t *testing.T) {
	catalog := &mockCatalog{schemaErr: errors.New("index broken")}
	embed := &mockBatchEmbedder{dim: 4}
	svc := New(catalog, embed, 1, 10, zap.NewNop())

	_, err := svc.Run(context.Background(), testRecords(3))
	if err == nil {
		t.Fatal("expected error when schema setup fails")
	}
	if embed.calls != 0 {
		t.Error("embedder must not be called when schema setup fails")
	}
}

func TestRun_EmbedFailureMarksBatch(t *testing.T) {
	catalog := &mockCatalog{}
	embed := &mockBatchEmbedder{dim: 4, err: domain.ErrModelUnavailable}
	svc := New(catalog, embed, 1, 10, zap.NewNop())

	report, err := svc.Run(context.Background(), testRecords(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Failed != 3 || report.Succeeded != 0 {
		t.Fatalf("report = %+v", report)
	}
	for _, res := range report.Results {
		if !errors.Is(res.Err, domain.ErrModelUnavailable) {
			t.Errorf("result err = %v, want ErrModelUnavailable", res.Err)
		}
	}
	if len(catalog.upsertedIDs) != 0 {
		t.Error("nothing should be upserted when embedding fails")
	}
}

func TestRun_EmbeddingCountMismatchMarksBatch(t *testing.T) {
	catalog := &mockCatalog{}
	embed := &mockBatchEmbedder{dim: 4, shortBy: 1}
	svc := New(catalog, embed, 1, 10, zap.NewNop())

	report, err := svc.Run(context.Background(), testRecords(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Failed != 3 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRun_UpsertFailureMarksBatch(t *testing.T) {
	catalog := &mockCatalog{upsertErr: domain.ErrSchemaMismatch}
	embed := &mockBatchEmbedder{dim: 4}
	svc := New(catalog, embed, 1, 2, zap.NewNop())

	report, err := svc.Run(context.Background(), testRecords(4))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Failed != 4 {
		t.Fatalf("report = %+v", report)
	}
	for _, res := range report.Results {
		if !errors.Is(res.Err, domain.ErrSchemaMismatch) {
			t.Errorf("result err = %v, want ErrSchemaMismatch", res.Err)
		}
	}
}

func TestRun_Empty(t *testing.T) {
	catalog := &mockCatalog{}
	embed := &mockBatchEmbedder{dim: 4}
	svc := New(catalog, embed, 4, 50, zap.NewNop())

	report, err := svc.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("report = %+v", report)
	}
	if catalog.schemaCalls != 1 {
		t.Error("schema should still be ensured for empty input")
	}
}

func TestParseRecords(t *testing.T) {
	data := []byte(`[
		{"product_id": 1, "name": "StormRunner X5", "description": "Trail shoes",
		 "category": "Footwear", "price": 129.99, "in_stock": true, "brand": "TrailMax"}
	]`)

	records, err := parseRecords(data)
	if err != nil {
		t.Fatalf("parseRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.ProductID != 1 || r.Name != "StormRunner X5" || r.Price != 129.99 || !r.InStock {
		t.Errorf("record = %+v", r)
	}
}

func TestParseRecords_Invalid(t *testing.T) {
	if _, err := parseRecords([]byte(`{"not": "an array"}`)); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}
