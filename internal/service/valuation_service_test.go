package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

type fakeBalance struct {
	balance float64
	err     error
}

func (f *fakeBalance) Balance(context.Context, string) (float64, error) {
	return f.balance, f.err
}

func TestApplyPricesDoesNotMutateInput(t *testing.T) {
	positions := []domain.Position{
		{Asset: "a", Size: 10, AvgPrice: 0.5, TotalBought: 5},
	}

	priced := ApplyPrices(positions, map[string]float64{"a": 0.8})

	require.Len(t, priced, 1)
	assert.Nil(t, positions[0].CurPrice, "input slice untouched")
	require.NotNil(t, priced[0].CurPrice)
	assert.Equal(t, 0.8, *priced[0].CurPrice)
	assert.Equal(t, 8.0, *priced[0].CurrentValue)
	assert.Equal(t, 3.0, *priced[0].CashPnl)
	require.NotNil(t, priced[0].PercentPnl)
	assert.InDelta(t, 60.0, *priced[0].PercentPnl, 1e-9)
}

func TestApplyPricesLeavesUnquotedPositionsUnchanged(t *testing.T) {
	positions := []domain.Position{
		{Asset: "a", Size: 10, AvgPrice: 0.5},
		{Asset: "b", Size: 4, AvgPrice: 0.25, TotalBought: 1},
	}

	priced := ApplyPrices(positions, map[string]float64{"b": 0.5})

	assert.Nil(t, priced[0].CurPrice)
	require.NotNil(t, priced[1].CurPrice)
	assert.Equal(t, 2.0, *priced[1].CurrentValue)
}

func TestApplyPricesNilPercentOnZeroCostBasis(t *testing.T) {
	positions := []domain.Position{
		{Asset: "a", Size: 10, AvgPrice: 0, TotalBought: 0, InitialValue: 0},
	}

	priced := ApplyPrices(positions, map[string]float64{"a": 0.3})

	require.NotNil(t, priced[0].CashPnl)
	assert.Equal(t, 3.0, *priced[0].CashPnl)
	assert.Nil(t, priced[0].PercentPnl, "percent pnl undefined at zero cost basis")
}

func TestCostBasisFallbackChain(t *testing.T) {
	assert.Equal(t, 7.0, domain.Position{TotalBought: 7, InitialValue: 3, AvgPrice: 0.5, Size: 10}.CostBasis())
	assert.Equal(t, 3.0, domain.Position{InitialValue: 3, AvgPrice: 0.5, Size: 10}.CostBasis())
	assert.Equal(t, 5.0, domain.Position{AvgPrice: 0.5, Size: 10}.CostBasis())
}

func TestSummarizeExcludesClosedPositions(t *testing.T) {
	val := func(f float64) *float64 { return &f }
	positions := []domain.Position{
		{Asset: "open", Size: 10, TotalBought: 5, CurrentValue: val(8)},
		{Asset: "closed", Size: 0, TotalBought: 100, CurrentValue: val(100), RealizedPnl: 12},
		{Asset: "negative", Size: -1, TotalBought: 50},
	}

	stats := Summarize(positions)

	assert.Equal(t, 1, stats.OpenCount)
	assert.Equal(t, 8.0, stats.TotalValue)
	assert.Equal(t, 5.0, stats.TotalCostBasis)
	assert.Equal(t, 3.0, stats.UnrealizedPnl)
}

func TestSortByValueDescIsStable(t *testing.T) {
	val := func(f float64) *float64 { return &f }
	positions := []domain.Position{
		{Asset: "first-equal", Size: 1, CurrentValue: val(5)},
		{Asset: "second-equal", Size: 1, CurrentValue: val(5)},
		{Asset: "big", Size: 1, CurrentValue: val(9)},
		{Asset: "fallback", Size: 4, CurPrice: val(2)}, // no current value, 4 x 2 = 8
	}

	SortByValueDesc(positions)

	assert.Equal(t, "big", positions[0].Asset)
	assert.Equal(t, "fallback", positions[1].Asset)
	assert.Equal(t, "first-equal", positions[2].Asset)
	assert.Equal(t, "second-equal", positions[3].Asset)
}

func TestSnapshotMockTaskRepricesFromOrderBook(t *testing.T) {
	fetcher := &fakeFetcher{prices: map[string]float64{"a": 0.8}}
	oracle := NewPriceOracle(fetcher, testLogger())
	svc := NewValuationService(oracle, &fakeBalance{err: errors.New("unused")}, testLogger())

	task := domain.CopyTask{ID: "t1", Mode: domain.TaskModeMock, InitialFinance: 100, CurrentBalance: 40}
	positions := []domain.Position{
		{TaskID: "t1", Asset: "a", Size: 10, AvgPrice: 0.5, TotalBought: 5},
	}

	snap := svc.Snapshot(context.Background(), task, positions)

	assert.Equal(t, 40.0, snap.Balance, "mock tasks use the recorded balance")
	assert.Equal(t, 48.0, snap.Equity)           // 40 + 10 x 0.8
	assert.Equal(t, -52.0, snap.TotalPnl)        // 48 - 100
	assert.Equal(t, -55.0, snap.RealizedPnl)     // 40 + 5 - 100
	assert.Equal(t, 3.0, snap.Stats.UnrealizedPnl)
}

func TestSnapshotLiveTaskUsesChainBalance(t *testing.T) {
	oracle := NewPriceOracle(&fakeFetcher{}, testLogger())
	svc := NewValuationService(oracle, &fakeBalance{balance: 250}, testLogger())

	task := domain.CopyTask{
		ID: "t1", Mode: domain.TaskModeLive,
		MyWalletAddress: "0xabc", InitialFinance: 200, CurrentBalance: 40,
	}

	snap := svc.Snapshot(context.Background(), task, nil)

	assert.Equal(t, 250.0, snap.Balance)
	assert.Equal(t, 50.0, snap.TotalPnl)
}

func TestSnapshotLiveTaskDoesNotReorderInput(t *testing.T) {
	oracle := NewPriceOracle(&fakeFetcher{}, testLogger())
	svc := NewValuationService(oracle, &fakeBalance{balance: 100}, testLogger())

	task := domain.CopyTask{
		ID: "t1", Mode: domain.TaskModeLive,
		MyWalletAddress: "0xabc", InitialFinance: 100,
	}
	small := 1.0
	large := 9.0
	positions := []domain.Position{
		{TaskID: "t1", Asset: "small", Size: 1, CurrentValue: &small},
		{TaskID: "t1", Asset: "large", Size: 1, CurrentValue: &large},
	}

	snap := svc.Snapshot(context.Background(), task, positions)

	require.Len(t, snap.Positions, 2)
	assert.Equal(t, "large", snap.Positions[0].Asset, "snapshot sorted by value")
	assert.Equal(t, "small", positions[0].Asset, "caller's slice keeps its order")
	assert.Equal(t, "large", positions[1].Asset)
}

func TestSnapshotLiveTaskFallsBackOnChainError(t *testing.T) {
	oracle := NewPriceOracle(&fakeFetcher{}, testLogger())
	svc := NewValuationService(oracle, &fakeBalance{err: errors.New("rpc down")}, testLogger())

	task := domain.CopyTask{
		ID: "t1", Mode: domain.TaskModeLive,
		MyWalletAddress: "0xabc", InitialFinance: 200, CurrentBalance: 40,
	}

	snap := svc.Snapshot(context.Background(), task, nil)

	assert.Equal(t, 40.0, snap.Balance, "recorded balance used when the chain read fails")
}
