// Package search implements the product search executor: validate the query,
// embed it, run filtered KNN, and rank the hits.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/prodisco/prodisco/internal/domain"
	domsearch "github.com/prodisco/prodisco/internal/domain/search"
	"github.com/prodisco/prodisco/internal/domain/search/filter"
	"github.com/prodisco/prodisco/internal/metrics"
)

// Service executes product searches.
type Service struct {
	repo    Repository
	embed   Embedder
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a search service. A zero timeout disables the per-query deadline.
func New(repo Repository, embed Embedder, timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{repo: repo, embed: embed, timeout: timeout, logger: logger}
}

// Search validates the query, vectorizes it, and returns the top matches
// ordered by relevance. Absent filters impose no constraint.
func (s *Service) Search(ctx context.Context, q *domsearch.Query) (*domsearch.Result, error) {
	start := time.Now()

	res, err := s.search(ctx, q)

	status := "success"
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		status = "invalid"
	case err != nil:
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	if err == nil {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
		metrics.SearchResultsReturned.Observe(float64(res.TotalResults))
	}

	return res, err
}

func (s *Service) search(ctx context.Context, q *domsearch.Query) (*domsearch.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	embResult, err := s.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	predicate, err := buildPredicate(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	limit := q.Limit()
	hits, err := s.repo.SearchKNN(ctx, embResult.Embedding, predicate, limit)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	rank(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}

	s.logger.Debug("Search completed",
		zap.String("query", q.Text),
		zap.Int("top_k", limit),
		zap.Int("results", len(hits)),
		zap.Int("prompt_tokens", embResult.PromptTokens),
	)

	return &domsearch.Result{
		Query:        q.Text,
		Products:     hits,
		TotalResults: len(hits),
	}, nil
}

// buildPredicate translates the query's optional filters into an exact
// pre-filter conjunction. Only supplied filters produce conditions.
func buildPredicate(q *domsearch.Query) (filter.Predicate, error) {
	var conditions []filter.Condition

	if q.MaxPrice != nil {
		c, err := filter.NewRange("price", filter.AtMost(*q.MaxPrice))
		if err != nil {
			return filter.Predicate{}, err
		}
		conditions = append(conditions, c)
	}
	if q.Category != "" {
		c, err := filter.NewMatch("category", q.Category)
		if err != nil {
			return filter.Predicate{}, err
		}
		conditions = append(conditions, c)
	}
	if q.Brand != "" {
		c, err := filter.NewMatch("brand", q.Brand)
		if err != nil {
			return filter.Predicate{}, err
		}
		conditions = append(conditions, c)
	}
	if q.InStockOnly {
		c, err := filter.NewMatch("in_stock", "true")
		if err != nil {
			return filter.Predicate{}, err
		}
		conditions = append(conditions, c)
	}

	return filter.New(conditions...)
}

// rank orders hits by ascending distance; equal distances fall back to
// product ID so the ordering is deterministic.
func rank(hits []domsearch.ScoredProduct) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Product.ID < hits[j].Product.ID
	})
}
