package domain

// Trade is one executed fill, recorded by the execution worker and immutable
// afterwards. RealizedPnl is nil when the fill did not close any position.
type Trade struct {
	ID           string
	TaskID       string
	Side         string
	Asset        string
	ConditionID  string
	OutcomeIndex int
	FillPrice    float64
	FillSize     float64
	UsdcAmount   float64
	Slippage     float64
	RealizedPnl  *float64
	ExecutedAt   int64 // epoch millis

	// Display metadata.
	Title     string
	Slug      string
	EventSlug string
	Outcome   string
}

// RealizedPnlValue returns the realized P&L of the fill, or 0 when the fill
// did not close a position.
func (t Trade) RealizedPnlValue() float64 {
	if t.RealizedPnl == nil {
		return 0
	}
	return *t.RealizedPnl
}
