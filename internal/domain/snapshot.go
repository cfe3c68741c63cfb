package domain

// PositionStats aggregates the open positions of a task. Positions with
// size <= 0 are excluded from the count and the totals.
type PositionStats struct {
	OpenCount      int
	TotalValue     float64
	TotalCostBasis float64
	UnrealizedPnl  float64
}

// PortfolioSnapshot is the derived, per-request view of a task's portfolio.
// It is computed fresh on every request and never persisted.
type PortfolioSnapshot struct {
	Balance        float64
	InitialFinance float64
	Equity         float64
	TotalPnl       float64
	RealizedPnl    float64
	Stats          PositionStats

	// Positions holds all priced positions; open ones sorted descending by
	// current value come first via SortedOpenPositions.
	Positions []Position
}

// OpenPositions returns the subset of the snapshot's positions with size > 0,
// preserving their order.
func (s PortfolioSnapshot) OpenPositions() []Position {
	open := make([]Position, 0, len(s.Positions))
	for _, p := range s.Positions {
		if p.Size > 0 {
			open = append(open, p)
		}
	}
	return open
}

// PerformancePoint is one point of a task's equity history series.
type PerformancePoint struct {
	Timestamp   int64 // epoch millis, bucket start
	Equity      float64
	RealizedPnl float64 // cumulative realized P&L up to this point
}

// PerformanceSeries is the chart-ready equity history of a task.
type PerformanceSeries struct {
	Labels         []string
	Values         []float64
	Points         []PerformancePoint
	Range          string
	StartTime      int64
	EndTime        int64
	InitialFinance float64
	CurrentEquity  float64
}
