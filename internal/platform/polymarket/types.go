package polymarket

import (
	"math"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// apiPosition mirrors one element of the data API positions response.
type apiPosition struct {
	Asset        string  `json:"asset"`
	ConditionID  string  `json:"conditionId"`
	Size         float64 `json:"size"`
	AvgPrice     float64 `json:"avgPrice"`
	InitialValue float64 `json:"initialValue"`
	CurrentValue float64 `json:"currentValue"`
	CashPnl      float64 `json:"cashPnl"`
	PercentPnl   float64 `json:"percentPnl"`
	TotalBought  float64 `json:"totalBought"`
	RealizedPnl  float64 `json:"realizedPnl"`
	CurPrice     float64 `json:"curPrice"`
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Icon         string  `json:"icon"`
	EventSlug    string  `json:"eventSlug"`
	Outcome      string  `json:"outcome"`
	OutcomeIndex int     `json:"outcomeIndex"`
	EndDate      string  `json:"endDate"`
}

// toDomain converts an API position into a domain.Position tagged with the
// owning task. Live positions arrive already priced, so the pricing fields
// are populated directly.
func (p apiPosition) toDomain(taskID string) domain.Position {
	return domain.Position{
		TaskID:       taskID,
		Asset:        p.Asset,
		ConditionID:  p.ConditionID,
		OutcomeIndex: p.OutcomeIndex,
		Size:         p.Size,
		AvgPrice:     p.AvgPrice,
		InitialValue: p.InitialValue,
		TotalBought:  p.TotalBought,
		CurPrice:     finitePtr(p.CurPrice),
		CurrentValue: finitePtr(p.CurrentValue),
		CashPnl:      finitePtr(p.CashPnl),
		PercentPnl:   finitePtr(p.PercentPnl),
		RealizedPnl:  p.RealizedPnl,
		Title:        p.Title,
		Slug:         p.Slug,
		Icon:         p.Icon,
		EventSlug:    p.EventSlug,
		Outcome:      p.Outcome,
		EndDate:      p.EndDate,
	}
}

// apiActivity mirrors one element of the data API activity response.
type apiActivity struct {
	TransactionHash string  `json:"transactionHash"`
	Timestamp       int64   `json:"timestamp"` // epoch seconds
	Type            string  `json:"type"`
	Side            string  `json:"side"`
	Asset           string  `json:"asset"`
	ConditionID     string  `json:"conditionId"`
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	UsdcSize        float64 `json:"usdcSize"`
	OutcomeIndex    int     `json:"outcomeIndex"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	EventSlug       string  `json:"eventSlug"`
	Outcome         string  `json:"outcome"`
}

// toDomain converts an on-chain activity entry into a domain.Trade. Activity
// entries carry no realized P&L, so the field stays nil.
func (a apiActivity) toDomain(taskID string) domain.Trade {
	return domain.Trade{
		ID:           a.TransactionHash,
		TaskID:       taskID,
		Side:         a.Side,
		Asset:        a.Asset,
		ConditionID:  a.ConditionID,
		OutcomeIndex: a.OutcomeIndex,
		FillPrice:    a.Price,
		FillSize:     a.Size,
		UsdcAmount:   a.UsdcSize,
		ExecutedAt:   a.Timestamp * 1000,
		Title:        a.Title,
		Slug:         a.Slug,
		EventSlug:    a.EventSlug,
		Outcome:      a.Outcome,
	}
}

func finitePtr(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
