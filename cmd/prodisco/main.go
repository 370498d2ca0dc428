package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/config"
	"github.com/prodisco/prodisco/internal/db"
	dbRedis "github.com/prodisco/prodisco/internal/db/redis"
	"github.com/prodisco/prodisco/internal/domain"
	logpkg "github.com/prodisco/prodisco/internal/logger"
	"github.com/prodisco/prodisco/internal/metrics"
	catalogrepo "github.com/prodisco/prodisco/internal/repository/catalog"
	"github.com/prodisco/prodisco/internal/repository/embcache"
	searchrepo "github.com/prodisco/prodisco/internal/repository/search"
	"github.com/prodisco/prodisco/internal/transport/mcp"
	openaiEmb "github.com/prodisco/prodisco/internal/transport/openai"
	embeddinguc "github.com/prodisco/prodisco/internal/usecase/embedding"
	healthuc "github.com/prodisco/prodisco/internal/usecase/health"
	searchuc "github.com/prodisco/prodisco/internal/usecase/search"
	"github.com/prodisco/prodisco/internal/version"
)

func main() {
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

	logger.Info("Starting prodisco MCP server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("embedding_model", cfg.Embedding.Model),
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
	logger.Info("Connected to catalog store")

	// Metrics are registered explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()

	base := buildBaseEmbedder(cfg, logger)
	embedder := buildEmbedderChain(base, cfg, store, logger)

	// Fail fast when the embedding endpoint is misconfigured.
	checkCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Embedding.TimeoutSec)*time.Second)
	if err := base.HealthCheck(checkCtx); err != nil {
		cancel()
		logger.Fatal("Embedding provider unreachable", zap.Error(err))
	}
	cancel()
	logger.Info("Embedding provider ready",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	catalogRepo := catalogrepo.New(store, catalogrepo.IndexSettings{
		Algorithm:       cfg.Index.Algorithm,
		Dimensions:      cfg.Embedding.Dimensions,
		FlatBlockSize:   cfg.Index.FlatBlockSize,
		HNSWM:           cfg.Index.HNSWM,
		HNSWEFConstruct: cfg.Index.HNSWEFConstruct,
	})
	if err := catalogRepo.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure catalog index", zap.Error(err))
	}

	searchRepo := searchrepo.New(store)
	searchSvc := searchuc.New(
		searchRepo, embedder,
		time.Duration(cfg.Search.TimeoutSec)*time.Second,
		logger,
	)
	healthSvc := healthuc.New(store, base)

	mcpServer := mcp.NewServer(searchSvc, healthSvc, version.Version, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Handle("/metrics", promhttp.Handler())
	mcpServer.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func buildBaseEmbedder(cfg config.Config, logger *zap.Logger) *openaiEmb.Embedder {
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
}

// buildEmbedderChain assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedderChain(
	base *openaiEmb.Embedder,
	cfg config.Config,
	store db.Store,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = base
	if cfg.Embedding.Cache {
		embedder = embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Model, logger)
}

// requestLogMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func requestLogMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
