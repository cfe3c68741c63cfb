// Package service contains the application services of the dashboard:
// price fetching, portfolio valuation, performance history, the correlated
// command protocol, and the task read API.
package service

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
)

// PriceFetcher returns the current sell-side order-book price for one token.
type PriceFetcher interface {
	SellPrice(ctx context.Context, tokenID string) (float64, error)
}

// PriceOracle resolves order-book prices for batches of tokens. Fetches run
// concurrently with a bounded degree of parallelism; tokens whose lookup
// fails are simply absent from the result.
type PriceOracle struct {
	fetcher     PriceFetcher
	logger      *slog.Logger
	concurrency int
}

// NewPriceOracle creates a PriceOracle over the given fetcher.
func NewPriceOracle(fetcher PriceFetcher, logger *slog.Logger) *PriceOracle {
	return &PriceOracle{
		fetcher:     fetcher,
		logger:      logger,
		concurrency: 8,
	}
}

// FetchMap resolves prices for the given token IDs, deduplicating repeats.
// The returned map contains an entry for every token whose lookup succeeded
// with a positive finite price; failed lookups are logged and skipped.
func (o *PriceOracle) FetchMap(ctx context.Context, tokenIDs []string) map[string]float64 {
	unique := make([]string, 0, len(tokenIDs))
	seen := make(map[string]struct{}, len(tokenIDs))
	for _, id := range tokenIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	prices := make(map[string]float64, len(unique))
	if len(unique) == 0 {
		return prices
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, tokenID := range unique {
		g.Go(func() error {
			price, err := o.fetcher.SellPrice(gctx, tokenID)
			if err != nil {
				o.logger.WarnContext(gctx, "price_oracle: fetch failed",
					slog.String("token_id", tokenID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				o.logger.WarnContext(gctx, "price_oracle: discarding unusable price",
					slog.String("token_id", tokenID),
					slog.Float64("price", price),
				)
				return nil
			}
			mu.Lock()
			prices[tokenID] = price
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; failed lookups degrade to missing entries.
	_ = g.Wait()
	return prices
}
