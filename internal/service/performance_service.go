package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// Chart range keys accepted by the performance endpoint.
const (
	RangeDay  = "1D"
	RangeWeek = "1W"
	RangeAll  = "ALL"
)

// rangeSpec maps a chart range to its lookback window, bucket width, and
// label layout. A zero window means "since task creation".
type rangeSpec struct {
	window   time.Duration
	interval time.Duration
	layout   string
}

var rangeSpecs = map[string]rangeSpec{
	RangeDay:  {window: 24 * time.Hour, interval: time.Hour, layout: "15:04"},
	RangeWeek: {window: 7 * 24 * time.Hour, interval: 6 * time.Hour, layout: "Mon 15"},
	RangeAll:  {window: 0, interval: 24 * time.Hour, layout: "Jan 2"},
}

// PerformanceService builds chart-ready equity history for a task from its
// trade ledger. Equity at each point is the initial stake plus cumulative
// realized P&L; open-position value is deliberately not included so the
// curve only moves when positions close.
type PerformanceService struct {
	tasks  domain.TaskStore
	trades domain.TradeStore
}

// NewPerformanceService creates a PerformanceService.
func NewPerformanceService(tasks domain.TaskStore, trades domain.TradeStore) *PerformanceService {
	return &PerformanceService{tasks: tasks, trades: trades}
}

// Build returns the equity history of the task over the given range. Unknown
// range keys fall back to ALL.
func (s *PerformanceService) Build(ctx context.Context, taskID, rangeKey string) (domain.PerformanceSeries, error) {
	spec, ok := rangeSpecs[rangeKey]
	if !ok {
		rangeKey = RangeAll
		spec = rangeSpecs[RangeAll]
	}

	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return domain.PerformanceSeries{}, fmt.Errorf("performance: load task %s: %w", taskID, err)
	}

	now := time.Now().UnixMilli()
	startTime := task.CreatedAt
	if spec.window > 0 {
		startTime = now - spec.window.Milliseconds()
	}

	// A windowed chart starts from the realized P&L accumulated before the
	// window so the first point carries the task's prior equity.
	var seedPnl float64
	if spec.window > 0 {
		seedPnl, err = s.trades.SumRealizedPnlBefore(ctx, taskID, startTime)
		if err != nil {
			return domain.PerformanceSeries{}, fmt.Errorf("performance: seed pnl for %s: %w", taskID, err)
		}
	}

	trades, err := s.trades.ListByTaskSince(ctx, taskID, startTime)
	if err != nil {
		return domain.PerformanceSeries{}, fmt.Errorf("performance: list trades for %s: %w", taskID, err)
	}

	return buildSeries(trades, task.InitialFinance, seedPnl, startTime, now, rangeKey, spec), nil
}

// buildSeries assembles the series from trades sorted oldest-first. Trades
// are bucketed by interval, each bucket contributing one point with the
// cumulative realized P&L through that bucket.
func buildSeries(trades []domain.Trade, initialFinance, seedPnl float64, startTime, now int64, rangeKey string, spec rangeSpec) domain.PerformanceSeries {
	intervalMs := spec.interval.Milliseconds()
	cumulative := seedPnl

	points := []domain.PerformancePoint{{
		Timestamp:   startTime,
		Equity:      initialFinance + cumulative,
		RealizedPnl: cumulative,
	}}

	// Trades arrive in time order, so buckets emerge already sorted.
	var bucketStart int64 = -1
	var bucketPnl float64
	flush := func() {
		if bucketStart < 0 {
			return
		}
		cumulative += bucketPnl
		points = append(points, domain.PerformancePoint{
			Timestamp:   bucketStart,
			Equity:      initialFinance + cumulative,
			RealizedPnl: cumulative,
		})
	}

	for _, t := range trades {
		start := t.ExecutedAt / intervalMs * intervalMs
		if start != bucketStart {
			flush()
			bucketStart = start
			bucketPnl = 0
		}
		bucketPnl += t.RealizedPnlValue()
	}
	flush()

	// Trailing point so the chart reaches the present.
	if last := points[len(points)-1]; last.Timestamp < now-intervalMs {
		points = append(points, domain.PerformancePoint{
			Timestamp:   now,
			Equity:      initialFinance + cumulative,
			RealizedPnl: cumulative,
		})
	}

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = time.UnixMilli(p.Timestamp).Format(spec.layout)
		values[i] = p.Equity
	}

	return domain.PerformanceSeries{
		Labels:         labels,
		Values:         values,
		Points:         points,
		Range:          rangeKey,
		StartTime:      startTime,
		EndTime:        now,
		InitialFinance: initialFinance,
		CurrentEquity:  values[len(values)-1],
	}
}
