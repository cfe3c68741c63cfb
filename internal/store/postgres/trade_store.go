package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

const tradeSelectCols = `id, task_id, side, asset, condition_id, outcome_index,
	fill_price, fill_size, usdc_amount, slippage, realized_pnl, executed_at,
	title, slug, event_slug, outcome`

func scanTradeRows(rows pgx.Rows) ([]domain.Trade, error) {
	var trades []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var id int64
		if err := rows.Scan(
			&id, &t.TaskID, &t.Side, &t.Asset, &t.ConditionID, &t.OutcomeIndex,
			&t.FillPrice, &t.FillSize, &t.UsdcAmount, &t.Slippage, &t.RealizedPnl, &t.ExecutedAt,
			&t.Title, &t.Slug, &t.EventSlug, &t.Outcome,
		); err != nil {
			return nil, err
		}
		t.ID = strconv.FormatInt(id, 10)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// ListByTask returns trades for a task sorted newest-first with pagination.
func (s *TradeStore) ListByTask(ctx context.Context, taskID string, opts domain.ListOpts) ([]domain.Trade, error) {
	query := `SELECT ` + tradeSelectCols + ` FROM mock_trades
		WHERE task_id = $1
		ORDER BY executed_at DESC`
	args := []any{taskID}
	argIdx := 2

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades for %s: %w", taskID, err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades for %s: %w", taskID, err)
	}
	return trades, nil
}

// ListByTaskSince returns a task's trades executed at or after sinceMs,
// oldest-first, for building performance history.
func (s *TradeStore) ListByTaskSince(ctx context.Context, taskID string, sinceMs int64) ([]domain.Trade, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM mock_trades
		 WHERE task_id = $1 AND executed_at >= $2
		 ORDER BY executed_at ASC`, taskID, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades since for %s: %w", taskID, err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan trades since for %s: %w", taskID, err)
	}
	return trades, nil
}

// ListRecent returns the newest trades across all tasks.
func (s *TradeStore) ListRecent(ctx context.Context, limit int) ([]domain.Trade, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+tradeSelectCols+` FROM mock_trades
		 ORDER BY executed_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent trades: %w", err)
	}
	defer rows.Close()

	trades, err := scanTradeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan recent trades: %w", err)
	}
	return trades, nil
}

// SumRealizedPnlBefore sums realized P&L of trades executed strictly before
// beforeMs. Fills that closed no position (NULL realized_pnl) are ignored.
func (s *TradeStore) SumRealizedPnlBefore(ctx context.Context, taskID string, beforeMs int64) (float64, error) {
	var total float64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(realized_pnl), 0) FROM mock_trades
		 WHERE task_id = $1 AND executed_at < $2 AND realized_pnl IS NOT NULL`,
		taskID, beforeMs,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("postgres: sum realized pnl for %s: %w", taskID, err)
	}
	return total, nil
}

// CountByTask returns the number of recorded trades for a task.
func (s *TradeStore) CountByTask(ctx context.Context, taskID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mock_trades WHERE task_id = $1`, taskID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count trades for %s: %w", taskID, err)
	}
	return count, nil
}

// Compile-time interface check.
var _ domain.TradeStore = (*TradeStore)(nil)
