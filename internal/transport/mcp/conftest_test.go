package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
	healthuc "github.com/prodisco/prodisco/internal/usecase/health"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, q *domsearch.Query) (*domsearch.Result, error)
	calls    int
}

func (m *mockSearcher) Search(ctx context.Context, q *domsearch.Query) (*domsearch.Result, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, q)
	}
	return &domsearch.Result{Query: q.Text}, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(ctx context.Context) error { return m.err }

func newTestServer(t *testing.T, search *mockSearcher) *httptest.Server {
	t.Helper()

	health := healthuc.New(&mockPinger{}, &mockChecker{})
	srv := NewServer(search, health, "test", zap.NewNop())

	r := chi.NewRouter()
	srv.Register(r)

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

// rpcCall posts a JSON-RPC request body and decodes the response envelope.
func rpcCall(t *testing.T, ts *httptest.Server, body string) rpcResponse {
	t.Helper()

	resp, err := http.Post(ts.URL+"/mcp", "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// resultMap re-marshals a decoded result into a map for assertions.
func resultMap(t *testing.T, result any) map[string]any {
	t.Helper()

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	return m
}

func domainProduct() domain.Product {
	return domain.Product{
		ID:          1,
		Name:        "StormRunner X5",
		Description: "Waterproof trail running shoes with aggressive grip",
		Category:    "Footwear",
		Price:       129.99,
		InStock:     true,
		Brand:       "TrailMax",
	}
}

func sampleResult(query string) *domsearch.Result {
	return &domsearch.Result{
		Query: query,
		Products: []domsearch.ScoredProduct{
			{
				Product: domainProduct(),
				// distance 0.25 renders as 80.0%
				Distance:  0.25,
				Relevance: 80.0,
			},
		},
		TotalResults: 1,
	}
}
