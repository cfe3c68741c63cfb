package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// archiveBatchSize pages the ledger read so huge histories do not load in
// one query.
const archiveBatchSize = 500

// Archiver exports a task's full trade ledger to the archive bucket before
// the task is removed and its rows become orphaned.
type Archiver struct {
	writer *Writer
	trades domain.TradeStore
}

// NewArchiver creates an Archiver writing through the given Writer.
func NewArchiver(writer *Writer, trades domain.TradeStore) *Archiver {
	return &Archiver{writer: writer, trades: trades}
}

// archiveDoc is the JSON layout of one archived ledger.
type archiveDoc struct {
	TaskID     string         `json:"taskId"`
	ArchivedAt time.Time      `json:"archivedAt"`
	TradeCount int            `json:"tradeCount"`
	Trades     []domain.Trade `json:"trades"`
}

// ArchiveTask exports every trade of the task as one JSON object under
// archives/tasks/{taskID}/{timestamp}.json and returns the object key.
func (a *Archiver) ArchiveTask(ctx context.Context, taskID string) (string, error) {
	var all []domain.Trade
	for offset := 0; ; offset += archiveBatchSize {
		batch, err := a.trades.ListByTask(ctx, taskID, domain.ListOpts{
			Limit:  archiveBatchSize,
			Offset: offset,
		})
		if err != nil {
			return "", fmt.Errorf("s3blob: read ledger for %s: %w", taskID, err)
		}
		all = append(all, batch...)
		if len(batch) < archiveBatchSize {
			break
		}
	}

	now := time.Now().UTC()
	doc := archiveDoc{
		TaskID:     taskID,
		ArchivedAt: now,
		TradeCount: len(all),
		Trades:     all,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal archive for %s: %w", taskID, err)
	}

	key := fmt.Sprintf("archives/tasks/%s/%s.json", taskID, now.Format("20060102T150405Z"))
	if err := a.writer.Put(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
