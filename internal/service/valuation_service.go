package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// BalanceReader reads the live USDC balance of a wallet.
type BalanceReader interface {
	Balance(ctx context.Context, wallet string) (float64, error)
}

// ValuationService turns raw position records into priced portfolio
// snapshots. Mock positions are repriced from the order book on every call;
// live positions arrive already priced by the data API.
type ValuationService struct {
	oracle  *PriceOracle
	balance BalanceReader
	logger  *slog.Logger
}

// NewValuationService creates a ValuationService.
func NewValuationService(oracle *PriceOracle, balance BalanceReader, logger *slog.Logger) *ValuationService {
	return &ValuationService{
		oracle:  oracle,
		balance: balance,
		logger:  logger,
	}
}

// ApplyPrices returns a copy of positions with the pricing fields recomputed
// from the given price map. Positions without a quote are returned unchanged.
// PercentPnl stays nil when the cost basis is zero.
func ApplyPrices(positions []domain.Position, prices map[string]float64) []domain.Position {
	out := make([]domain.Position, len(positions))
	for i, p := range positions {
		price, ok := prices[p.Asset]
		if !ok {
			out[i] = p
			continue
		}

		currentValue := p.Size * price
		costBasis := p.CostBasis()
		cashPnl := currentValue - costBasis

		p.CurPrice = &price
		p.CurrentValue = &currentValue
		p.CashPnl = &cashPnl
		if costBasis > 0 {
			pct := cashPnl / costBasis * 100
			p.PercentPnl = &pct
		} else {
			p.PercentPnl = nil
		}
		out[i] = p
	}
	return out
}

// Summarize aggregates the open positions. Records with size <= 0 are closed
// positions kept for their realized P&L and are excluded entirely.
func Summarize(positions []domain.Position) domain.PositionStats {
	var stats domain.PositionStats
	for _, p := range positions {
		if p.Size <= 0 {
			continue
		}
		stats.OpenCount++
		stats.TotalValue += p.MarkValue()
		stats.TotalCostBasis += p.CostBasis()
	}
	stats.UnrealizedPnl = stats.TotalValue - stats.TotalCostBasis
	return stats
}

// SortByValueDesc orders positions by current value, highest first. The sort
// is stable so equal-value positions keep their store order.
func SortByValueDesc(positions []domain.Position) {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].MarkValue() > positions[j].MarkValue()
	})
}

// Snapshot builds the full portfolio view for a task from its position
// records. Mock tasks are repriced from the order book; live tasks use the
// wallet's on-chain balance, falling back to the task's recorded balance
// when the chain read fails.
func (s *ValuationService) Snapshot(ctx context.Context, task domain.CopyTask, positions []domain.Position) domain.PortfolioSnapshot {
	var priced []domain.Position
	if task.IsLive() {
		// Live positions arrive already priced; copy before sorting so the
		// caller's slice is never reordered.
		priced = append(priced, positions...)
	} else {
		tokenIDs := make([]string, 0, len(positions))
		for _, p := range positions {
			if p.Size > 0 {
				tokenIDs = append(tokenIDs, p.Asset)
			}
		}
		prices := s.oracle.FetchMap(ctx, tokenIDs)
		priced = ApplyPrices(positions, prices)
	}

	stats := Summarize(priced)
	balance := s.resolveBalance(ctx, task)

	equity := balance + stats.TotalValue
	snapshot := domain.PortfolioSnapshot{
		Balance:        balance,
		InitialFinance: task.InitialFinance,
		Equity:         equity,
		TotalPnl:       equity - task.InitialFinance,
		RealizedPnl:    balance + stats.TotalCostBasis - task.InitialFinance,
		Stats:          stats,
		Positions:      priced,
	}
	SortByValueDesc(snapshot.Positions)
	return snapshot
}

// resolveBalance picks the cash balance for a task: the on-chain USDC balance
// for live tasks when readable, else the worker-recorded balance.
func (s *ValuationService) resolveBalance(ctx context.Context, task domain.CopyTask) float64 {
	if !task.IsLive() || task.MyWalletAddress == "" {
		return task.CurrentBalance
	}

	live, err := s.balance.Balance(ctx, task.MyWalletAddress)
	if err != nil {
		s.logger.WarnContext(ctx, "valuation: chain balance read failed, using recorded balance",
			slog.String("task_id", task.ID),
			slog.String("error", err.Error()),
		)
		return task.CurrentBalance
	}
	if live < 0 {
		return task.CurrentBalance
	}
	return live
}
