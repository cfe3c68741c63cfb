package domain

import "math"

// Position is one holding of a task in a single market outcome. Positions are
// created and mutated by the execution worker; the dashboard only reads them.
//
// The pricing fields (CurPrice, CurrentValue, CashPnl, PercentPnl) are
// pointers because a mock position is unpriced until an order-book quote is
// applied, and PercentPnl is undefined whenever the cost basis is zero.
type Position struct {
	TaskID       string
	Asset        string // ERC-1155 token ID of the outcome share
	ConditionID  string
	OutcomeIndex int
	Size         float64
	AvgPrice     float64
	InitialValue float64
	TotalBought  float64
	CurPrice     *float64
	CurrentValue *float64
	CashPnl      *float64
	PercentPnl   *float64
	RealizedPnl  float64

	// Display metadata carried through from the market.
	Title     string
	Slug      string
	Icon      string
	EventSlug string
	Outcome   string
	EndDate   string
}

// CostBasis resolves the capital committed to the position. The fallback
// order is fixed: recorded total-bought when positive, else recorded
// initial-value when positive, else avgPrice x size.
func (p Position) CostBasis() float64 {
	if isPosFinite(p.TotalBought) {
		return p.TotalBought
	}
	if isPosFinite(p.InitialValue) {
		return p.InitialValue
	}
	avg := p.AvgPrice
	if !isFinite(avg) {
		avg = 0
	}
	return avg * p.Size
}

// MarkValue returns the position's current value, falling back to
// size x (mark price or entry price) when the value has not been computed.
func (p Position) MarkValue() float64 {
	if p.CurrentValue != nil && isFinite(*p.CurrentValue) {
		return *p.CurrentValue
	}
	price := p.AvgPrice
	if p.CurPrice != nil && *p.CurPrice > 0 {
		price = *p.CurPrice
	}
	return p.Size * price
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isPosFinite(f float64) bool {
	return isFinite(f) && f > 0
}
