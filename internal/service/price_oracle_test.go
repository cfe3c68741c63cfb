package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  []string
}

func (f *fakeFetcher) SellPrice(_ context.Context, tokenID string) (float64, error) {
	f.mu.Lock()
	f.calls = append(f.calls, tokenID)
	f.mu.Unlock()

	if err, ok := f.errs[tokenID]; ok {
		return 0, err
	}
	if price, ok := f.prices[tokenID]; ok {
		return price, nil
	}
	return 0, errors.New("unknown token")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPriceOracleDeduplicatesTokens(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"a": 0.42, "b": 0.13}}
	oracle := NewPriceOracle(fetcher, testLogger())

	prices := oracle.FetchMap(context.Background(), []string{"a", "b", "a", "", "b"})

	require.Len(t, prices, 2)
	assert.Equal(t, 0.42, prices["a"])
	assert.Equal(t, 0.13, prices["b"])
	assert.Len(t, fetcher.calls, 2, "each unique token fetched once")
}

func TestPriceOracleSkipsFailedLookups(t *testing.T) {
	fetcher := &fakeFetcher{
		prices: map[string]float64{"a": 0.5},
		errs:   map[string]error{"b": errors.New("boom")},
	}
	oracle := NewPriceOracle(fetcher, testLogger())

	prices := oracle.FetchMap(context.Background(), []string{"a", "b"})

	require.Len(t, prices, 1)
	assert.Equal(t, 0.5, prices["a"])
	_, ok := prices["b"]
	assert.False(t, ok)
}

func TestPriceOracleDiscardsUnusablePrices(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{
		"ok":   0.37,
		"zero": 0,
		"neg":  -0.1,
		"nan":  math.NaN(),
		"inf":  math.Inf(1),
	}}
	oracle := NewPriceOracle(fetcher, testLogger())

	prices := oracle.FetchMap(context.Background(), []string{"ok", "zero", "neg", "nan", "inf"})

	require.Len(t, prices, 1)
	assert.Equal(t, 0.37, prices["ok"])
}

func TestPriceOracleEmptyInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	oracle := NewPriceOracle(fetcher, testLogger())

	prices := oracle.FetchMap(context.Background(), nil)

	assert.Empty(t, prices)
	assert.Empty(t, fetcher.calls)
}
