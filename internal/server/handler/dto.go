package handler

import (
	"fmt"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/service"
)

// portfolioDTO is one entry of the dashboard's overview list.
type portfolioDTO struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Mode           string  `json:"mode"`
	Status         string  `json:"status"`
	Balance        float64 `json:"balance"`
	Positions      int     `json:"positions"`
	PnlAllTime     float64 `json:"pnlAllTime"`
	Unrealized     float64 `json:"unrealized"`
	RealizedPnl    float64 `json:"realizedPnl"`
	Equity         float64 `json:"equity"`
	InitialFinance float64 `json:"initialFinance"`
	FixedAmount    float64 `json:"fixedAmount"`
	TradeCount     int64   `json:"tradeCount"`
	Address        string  `json:"address"`
	ProfileURL     string  `json:"profileUrl"`
	CreatedAt      int64   `json:"createdAt"`
}

func toPortfolioDTO(p service.TaskPortfolio) portfolioDTO {
	return portfolioDTO{
		ID:             p.Task.ID,
		Name:           p.Task.ProfileName(),
		Description:    fmt.Sprintf("Copying %s", p.Task.ShortAddress()),
		Mode:           string(p.Task.Mode),
		Status:         displayStatus(p.Task.Status),
		Balance:        p.Snapshot.Balance,
		Positions:      p.Snapshot.Stats.OpenCount,
		PnlAllTime:     p.Snapshot.TotalPnl,
		Unrealized:     p.Snapshot.Stats.UnrealizedPnl,
		RealizedPnl:    p.Snapshot.RealizedPnl,
		Equity:         p.Snapshot.Equity,
		InitialFinance: p.Snapshot.InitialFinance,
		FixedAmount:    p.Task.FixedAmount,
		TradeCount:     p.TradeCount,
		Address:        p.Task.Address,
		ProfileURL:     p.Task.ProfileURL,
		CreatedAt:      p.Task.CreatedAt,
	}
}

// positionDTO is one open position in the task detail view. CurPrice falls
// back to the entry price when no quote was available.
type positionDTO struct {
	Title        string   `json:"title"`
	Outcome      string   `json:"outcome"`
	Size         float64  `json:"size"`
	AvgPrice     float64  `json:"avgPrice"`
	CurPrice     float64  `json:"curPrice"`
	CurrentValue float64  `json:"currentValue"`
	CashPnl      float64  `json:"cashPnl"`
	PercentPnl   *float64 `json:"percentPnl"`
	Asset        string   `json:"asset"`
	ConditionID  string   `json:"conditionId"`
	Slug         string   `json:"slug"`
	EventSlug    string   `json:"eventSlug"`
	Icon         string   `json:"icon"`
	EndDate      string   `json:"endDate"`
	RealizedPnl  float64  `json:"realizedPnl"`
}

func toPositionDTO(p domain.Position) positionDTO {
	title := p.Title
	if title == "" {
		title = p.Slug
	}
	if title == "" {
		title = p.ConditionID
	}
	if title == "" {
		title = "Unknown"
	}

	curPrice := p.AvgPrice
	if p.CurPrice != nil {
		curPrice = *p.CurPrice
	}
	var currentValue, cashPnl float64
	if p.CurrentValue != nil {
		currentValue = *p.CurrentValue
	}
	if p.CashPnl != nil {
		cashPnl = *p.CashPnl
	}

	return positionDTO{
		Title:        title,
		Outcome:      p.Outcome,
		Size:         p.Size,
		AvgPrice:     p.AvgPrice,
		CurPrice:     curPrice,
		CurrentValue: currentValue,
		CashPnl:      cashPnl,
		PercentPnl:   p.PercentPnl,
		Asset:        p.Asset,
		ConditionID:  p.ConditionID,
		Slug:         p.Slug,
		EventSlug:    p.EventSlug,
		Icon:         p.Icon,
		EndDate:      p.EndDate,
		RealizedPnl:  p.RealizedPnl,
	}
}

// tradeDTO is one ledger entry.
type tradeDTO struct {
	ID           string   `json:"id"`
	TaskID       string   `json:"taskId"`
	Side         string   `json:"side"`
	Asset        string   `json:"asset"`
	ConditionID  string   `json:"conditionId"`
	OutcomeIndex int      `json:"outcomeIndex"`
	FillPrice    float64  `json:"fillPrice"`
	FillSize     float64  `json:"fillSize"`
	UsdcAmount   float64  `json:"usdcAmount"`
	Slippage     float64  `json:"slippage"`
	RealizedPnl  *float64 `json:"realizedPnl"`
	ExecutedAt   int64    `json:"executedAt"`
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	EventSlug    string   `json:"eventSlug"`
	Outcome      string   `json:"outcome"`
}

func toTradeDTO(t domain.Trade) tradeDTO {
	id := t.ID
	if id == "" {
		id = fmt.Sprintf("%s-%d", t.TaskID, t.ExecutedAt)
	}
	return tradeDTO{
		ID:           id,
		TaskID:       t.TaskID,
		Side:         t.Side,
		Asset:        t.Asset,
		ConditionID:  t.ConditionID,
		OutcomeIndex: t.OutcomeIndex,
		FillPrice:    t.FillPrice,
		FillSize:     t.FillSize,
		UsdcAmount:   t.UsdcAmount,
		Slippage:     t.Slippage,
		RealizedPnl:  t.RealizedPnl,
		ExecutedAt:   t.ExecutedAt,
		Title:        t.Title,
		Slug:         t.Slug,
		EventSlug:    t.EventSlug,
		Outcome:      t.Outcome,
	}
}

// recentTradeDTO is one entry of the cross-task activity feed.
type recentTradeDTO struct {
	TaskID      string   `json:"taskId"`
	TaskName    string   `json:"taskName"`
	Side        string   `json:"side"`
	Title       string   `json:"title"`
	Outcome     string   `json:"outcome"`
	UsdcAmount  float64  `json:"usdcAmount"`
	FillPrice   float64  `json:"fillPrice"`
	FillSize    float64  `json:"fillSize"`
	RealizedPnl *float64 `json:"realizedPnl,omitempty"`
	ExecutedAt  int64    `json:"executedAt"`
}

func toRecentTradeDTO(rt service.RecentTrade) recentTradeDTO {
	title := rt.Trade.Title
	if title == "" {
		title = rt.Trade.Slug
	}
	if title == "" {
		title = rt.Trade.ConditionID
	}
	if title == "" {
		title = "Unknown"
	}
	return recentTradeDTO{
		TaskID:      rt.Trade.TaskID,
		TaskName:    rt.TaskName,
		Side:        rt.Trade.Side,
		Title:       title,
		Outcome:     rt.Trade.Outcome,
		UsdcAmount:  rt.Trade.UsdcAmount,
		FillPrice:   rt.Trade.FillPrice,
		FillSize:    rt.Trade.FillSize,
		RealizedPnl: rt.Trade.RealizedPnl,
		ExecutedAt:  rt.Trade.ExecutedAt,
	}
}

// taskDetailDTO is the single-task view.
type taskDetailDTO struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Mode            string        `json:"mode"`
	Status          string        `json:"status"`
	Balance         float64       `json:"balance"`
	PositionCount   int           `json:"positionCount"`
	PnlAllTime      float64       `json:"pnlAllTime"`
	Unrealized      float64       `json:"unrealized"`
	RealizedPnl     float64       `json:"realizedPnl"`
	Equity          float64       `json:"equity"`
	InitialFinance  float64       `json:"initialFinance"`
	FixedAmount     float64       `json:"fixedAmount"`
	Address         string        `json:"address"`
	MyWalletAddress string        `json:"myWalletAddress"`
	ProfileURL      string        `json:"profileUrl"`
	CreatedAt       int64         `json:"createdAt"`
	Positions       []positionDTO `json:"positions"`
	RecentTrades    []tradeDTO    `json:"recentTrades"`
}

func toTaskDetailDTO(d service.TaskDetail) taskDetailDTO {
	open := d.Snapshot.OpenPositions()
	positions := make([]positionDTO, len(open))
	for i, p := range open {
		positions[i] = toPositionDTO(p)
	}

	trades := make([]tradeDTO, len(d.RecentTrades))
	for i, t := range d.RecentTrades {
		trades[i] = toTradeDTO(t)
	}

	return taskDetailDTO{
		ID:              d.Task.ID,
		Name:            d.Task.ProfileName(),
		Description:     fmt.Sprintf("Copying %s", d.Task.ShortAddress()),
		Mode:            string(d.Task.Mode),
		Status:          displayStatus(d.Task.Status),
		Balance:         d.Snapshot.Balance,
		PositionCount:   d.Snapshot.Stats.OpenCount,
		PnlAllTime:      d.Snapshot.TotalPnl,
		Unrealized:      d.Snapshot.Stats.UnrealizedPnl,
		RealizedPnl:     d.Snapshot.RealizedPnl,
		Equity:          d.Snapshot.Equity,
		InitialFinance:  d.Snapshot.InitialFinance,
		FixedAmount:     d.Task.FixedAmount,
		Address:         d.Task.Address,
		MyWalletAddress: d.Task.MyWalletAddress,
		ProfileURL:      d.Task.ProfileURL,
		CreatedAt:       d.Task.CreatedAt,
		Positions:       positions,
		RecentTrades:    trades,
	}
}

// displayStatus maps worker status values to the labels the frontend shows.
func displayStatus(s domain.TaskStatus) string {
	if s == domain.TaskStatusRunning {
		return "active"
	}
	return "paused"
}

// performanceDTO is the chart payload.
type performanceDTO struct {
	Labels         []string  `json:"labels"`
	Values         []float64 `json:"values"`
	Range          string    `json:"range"`
	StartTime      int64     `json:"startTime"`
	EndTime        int64     `json:"endTime"`
	InitialFinance float64   `json:"initialFinance"`
	CurrentEquity  float64   `json:"currentEquity"`
}

func toPerformanceDTO(s domain.PerformanceSeries) performanceDTO {
	return performanceDTO{
		Labels:         s.Labels,
		Values:         s.Values,
		Range:          s.Range,
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		InitialFinance: s.InitialFinance,
		CurrentEquity:  s.CurrentEquity,
	}
}
