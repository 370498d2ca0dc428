// Package ingest implements the catalog loading pipeline: validate records,
// vectorize descriptions, and upsert products with per-record reporting.
package ingest

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/domain"
	domingest "github.com/prodisco/prodisco/internal/domain/ingest"
)

// DefaultBatchSize is the number of records per embedding+upsert batch.
const DefaultBatchSize = 50

// DefaultWorkers is the number of concurrent batch workers.
const DefaultWorkers = 4

// Service runs the ingestion pipeline.
type Service struct {
	catalog   Catalog
	embed     Embedder
	workers   int
	batchSize int
	logger    *zap.Logger
}

// New creates an ingestion service.
func New(catalog Catalog, embed Embedder, workers, batchSize int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		catalog:   catalog,
		embed:     embed,
		workers:   workers,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run ingests the given records: ensures the index schema, embeds each
// record's description, and upserts in batches. Invalid records are reported
// individually and never block the rest of the run.
func (s *Service) Run(ctx context.Context, records []Record) (domingest.Report, error) {
	if err := s.catalog.EnsureSchema(ctx); err != nil {
		return domingest.Report{}, fmt.Errorf("ensure schema: %w", err)
	}

	results := make([]domingest.Result, len(records))

	// Validate up front; only valid records enter the embedding batches.
	valid := make([]int, 0, len(records))
	for i, rec := range records {
		if err := rec.Product().Validate(); err != nil {
			results[i] = domingest.Failed(rec.ProductID, err)
			continue
		}
		valid = append(valid, i)
	}

	batches := chunk(valid, s.batchSize)
	s.runBatches(ctx, records, batches, results)

	report := domingest.Build(results)

	total, err := s.catalog.Count(ctx)
	if err != nil {
		s.logger.Warn("Failed to count products after ingest", zap.Error(err))
	}

	s.logger.Info("Ingestion completed",
		zap.Int("records", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("catalog_total", total),
	)

	return report, nil
}

// runBatches processes batches with a bounded worker pool. Each batch writes
// only its own disjoint indices of results, so no locking is needed.
func (s *Service) runBatches(
	ctx context.Context, records []Record, batches [][]int, results []domingest.Result,
) {
	jobs := make(chan []int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(batches) {
		workers = len(batches)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for batch := range jobs {
				s.processBatch(ctx, records, batch, results)
			}
		}()
	}

	for _, b := range batches {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
}

// processBatch embeds the batch's descriptions and upserts the products.
// A batch-level failure marks every record in the batch.
func (s *Service) processBatch(
	ctx context.Context, records []Record, batch []int, results []domingest.Result,
) {
	texts := make([]string, len(batch))
	for j, i := range batch {
		texts[j] = records[i].Description
	}

	emb, err := s.batchEmbed(ctx, texts)
	if err != nil {
		s.failBatch(records, batch, results, fmt.Errorf("embed batch: %w", err))
		return
	}
	if len(emb.Embeddings) != len(batch) {
		s.failBatch(records, batch, results, fmt.Errorf(
			"%w: got %d embeddings for %d records", domain.ErrModelUnavailable, len(emb.Embeddings), len(batch)))
		return
	}

	products := make([]*domain.Product, len(batch))
	for j, i := range batch {
		p := records[i].Product()
		p.Embedding = emb.Embeddings[j]
		products[j] = p
	}

	if err := s.catalog.UpsertBatch(ctx, products); err != nil {
		s.failBatch(records, batch, results, fmt.Errorf("upsert batch: %w", err))
		return
	}

	for _, i := range batch {
		results[i] = domingest.OK(records[i].ProductID)
	}
}

func (s *Service) batchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := s.embed.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, s.embed, texts)
}

func (s *Service) failBatch(records []Record, batch []int, results []domingest.Result, err error) {
	s.logger.Error("Batch ingestion failed", zap.Int("batch_size", len(batch)), zap.Error(err))
	for _, i := range batch {
		results[i] = domingest.Failed(records[i].ProductID, err)
	}
}

// chunk splits indices into batches of at most size.
func chunk(indices []int, size int) [][]int {
	var batches [][]int
	for start := 0; start < len(indices); start += size {
		end := start + size
		if end > len(indices) {
			end = len(indices)
		}
		batches = append(batches, indices[start:end])
	}
	return batches
}
