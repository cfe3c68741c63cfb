package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

// TaskStore implements domain.TaskStore over the worker-owned Redis hash of
// serialized tasks. Records written by older worker versions may miss fields
// or carry wrong types; decoding tolerates both.
type TaskStore struct {
	client *Client
}

// NewTaskStore creates a TaskStore backed by the shared Client.
func NewTaskStore(c *Client) *TaskStore {
	return &TaskStore{client: c}
}

// List returns every task in the registry, sorted by creation time.
func (s *TaskStore) List(ctx context.Context) ([]domain.CopyTask, error) {
	rdb, err := s.client.Underlying(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := rdb.HGetAll(ctx, domain.TasksKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list tasks: %w", err)
	}

	tasks := make([]domain.CopyTask, 0, len(raw))
	for _, payload := range raw {
		task, err := decodeTask([]byte(payload))
		if err != nil {
			continue // skip unreadable records, matching the worker's tolerance
		}
		tasks = append(tasks, task)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt < tasks[j].CreatedAt
	})
	return tasks, nil
}

// Get returns a single task by id, or domain.ErrNotFound.
func (s *TaskStore) Get(ctx context.Context, id string) (domain.CopyTask, error) {
	rdb, err := s.client.Underlying(ctx)
	if err != nil {
		return domain.CopyTask{}, err
	}

	payload, err := rdb.HGet(ctx, domain.TasksKey, id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.CopyTask{}, domain.ErrNotFound
		}
		return domain.CopyTask{}, fmt.Errorf("redis: get task %s: %w", id, err)
	}

	task, err := decodeTask(payload)
	if err != nil {
		return domain.CopyTask{}, fmt.Errorf("redis: decode task %s: %w", id, err)
	}
	return task, nil
}

// Exists reports whether a task id is present in the registry.
func (s *TaskStore) Exists(ctx context.Context, id string) (bool, error) {
	rdb, err := s.client.Underlying(ctx)
	if err != nil {
		return false, err
	}

	ok, err := rdb.HExists(ctx, domain.TasksKey, id).Result()
	if err != nil {
		return false, fmt.Errorf("redis: task exists %s: %w", id, err)
	}
	return ok, nil
}

// storedTask mirrors the worker's serialized task format, including the
// deprecated "wallet" field that predates myWalletAddress.
type storedTask struct {
	ID              string   `json:"id"`
	Type            string   `json:"type"`
	Address         string   `json:"address"`
	MyWalletAddress string   `json:"myWalletAddress"`
	Wallet          string   `json:"wallet"` // legacy alias
	URL             string   `json:"url"`
	InitialFinance  looseNum `json:"initialFinance"`
	CurrentBalance  looseNum `json:"currentBalance"`
	FixedAmount     looseNum `json:"fixedAmount"`
	Status          string   `json:"status"`
	CreatedAt       looseNum `json:"createdAt"`
}

// decodeTask parses a stored task record and normalizes it: legacy wallet
// field honored, invalid numerics zeroed, missing status treated as running.
func decodeTask(payload []byte) (domain.CopyTask, error) {
	var st storedTask
	if err := json.Unmarshal(payload, &st); err != nil {
		return domain.CopyTask{}, err
	}

	wallet := st.MyWalletAddress
	if wallet == "" {
		wallet = st.Wallet
	}

	status := domain.TaskStatusRunning
	if st.Status == string(domain.TaskStatusStopped) {
		status = domain.TaskStatusStopped
	}

	mode := domain.TaskModeLive
	if st.Type == string(domain.TaskModeMock) {
		mode = domain.TaskModeMock
	}

	createdAt := int64(st.CreatedAt)
	if createdAt == 0 {
		createdAt = time.Now().UnixMilli()
	}

	return domain.CopyTask{
		ID:              st.ID,
		Mode:            mode,
		Address:         st.Address,
		MyWalletAddress: wallet,
		ProfileURL:      st.URL,
		InitialFinance:  float64(st.InitialFinance),
		CurrentBalance:  float64(st.CurrentBalance),
		FixedAmount:     float64(st.FixedAmount),
		Status:          status,
		CreatedAt:       createdAt,
	}, nil
}

// looseNum decodes a JSON value that should be a number but may be anything.
// Stringified numbers are parsed; other non-numeric values decode to 0
// instead of failing the whole record.
type looseNum float64

func (n *looseNum) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = looseNum(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*n = looseNum(f)
			return nil
		}
	}

	*n = 0
	return nil
}

// Compile-time interface check.
var _ domain.TaskStore = (*TaskStore)(nil)
