// Command ingest loads a product catalog file, embeds every product
// description, and upserts the result into the catalog store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/config"
	dbRedis "github.com/prodisco/prodisco/internal/db/redis"
	"github.com/prodisco/prodisco/internal/domain"
	logpkg "github.com/prodisco/prodisco/internal/logger"
	"github.com/prodisco/prodisco/internal/metrics"
	catalogrepo "github.com/prodisco/prodisco/internal/repository/catalog"
	"github.com/prodisco/prodisco/internal/repository/embcache"
	openaiEmb "github.com/prodisco/prodisco/internal/transport/openai"
	embeddinguc "github.com/prodisco/prodisco/internal/usecase/embedding"
	ingestuc "github.com/prodisco/prodisco/internal/usecase/ingest"
	"github.com/prodisco/prodisco/internal/version"
)

func main() {
	file := flag.String("file", "products.json", "path to the product catalog JSON file")
	flag.Parse()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalog ingestion",
		zap.String("version", version.Version),
		zap.String("file", *file),
		zap.Int("workers", cfg.Ingest.Workers),
		zap.Int("batch_size", cfg.Ingest.BatchSize),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Catalog store not ready", zap.Error(err))
	}

	metrics.RegisterEmbeddingMetrics()

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	var embedder domain.Embedder = base
	if cfg.Embedding.Cache {
		embedder = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Model, logger)

	catalogRepo := catalogrepo.New(store, catalogrepo.IndexSettings{
		Algorithm:       cfg.Index.Algorithm,
		Dimensions:      cfg.Embedding.Dimensions,
		FlatBlockSize:   cfg.Index.FlatBlockSize,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})

	records, err := ingestuc.LoadFile(*file)
	if err != nil {
		logger.Fatal("Failed to load catalog file", zap.Error(err))
	}

	svc := ingestuc.New(catalogRepo, embedder, cfg.Ingest.Workers, cfg.Ingest.BatchSize, logger)

	report, err := svc.Run(ctx, records)
	if err != nil {
		logger.Fatal("Ingestion failed", zap.Error(err))
	}

	for _, res := range report.Results {
		if res.Err != nil {
			logger.Warn("Product not ingested",
				zap.Int64("product_id", res.ProductID),
				zap.Error(res.Err),
			)
		}
	}

	fmt.Printf("ingested %d/%d products (%d failed)\n",
		report.Succeeded, report.Total, report.Failed)

	if report.Failed > 0 {
		os.Exit(1)
	}
}
