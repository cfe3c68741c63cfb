package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// PositionStore implements domain.PositionStore using PostgreSQL.
type PositionStore struct {
	pool *pgxpool.Pool
}

// NewPositionStore creates a PositionStore backed by the given connection pool.
func NewPositionStore(pool *pgxpool.Pool) *PositionStore {
	return &PositionStore{pool: pool}
}

const positionSelectCols = `task_id, asset, condition_id, outcome_index,
	size, avg_price, initial_value, total_bought,
	cur_price, current_value, cash_pnl, percent_pnl, realized_pnl,
	title, slug, icon, event_slug, outcome, end_date`

func scanPositionRows(rows pgx.Rows) ([]domain.Position, error) {
	var positions []domain.Position
	for rows.Next() {
		var p domain.Position
		if err := rows.Scan(
			&p.TaskID, &p.Asset, &p.ConditionID, &p.OutcomeIndex,
			&p.Size, &p.AvgPrice, &p.InitialValue, &p.TotalBought,
			&p.CurPrice, &p.CurrentValue, &p.CashPnl, &p.PercentPnl, &p.RealizedPnl,
			&p.Title, &p.Slug, &p.Icon, &p.EventSlug, &p.Outcome, &p.EndDate,
		); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// ListByTask returns all position records for the given task.
func (s *PositionStore) ListByTask(ctx context.Context, taskID string) ([]domain.Position, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+positionSelectCols+` FROM mock_positions
		 WHERE task_id = $1
		 ORDER BY id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions for %s: %w", taskID, err)
	}
	defer rows.Close()

	positions, err := scanPositionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan positions for %s: %w", taskID, err)
	}
	return positions, nil
}

// Compile-time interface check.
var _ domain.PositionStore = (*PositionStore)(nil)
