package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trading-UI-Team/Polymarket-copy-view/internal/domain"
)

func TestDecodeTaskFullRecord(t *testing.T) {
	payload := []byte(`{
		"id": "task-1",
		"type": "live",
		"address": "0xabc",
		"myWalletAddress": "0xdef",
		"url": "https://polymarket.com/profile/0xabc",
		"initialFinance": 1000,
		"currentBalance": 850.5,
		"fixedAmount": 25,
		"status": "running",
		"createdAt": 1700000000000
	}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, domain.TaskModeLive, task.Mode)
	assert.Equal(t, "0xabc", task.Address)
	assert.Equal(t, "0xdef", task.MyWalletAddress)
	assert.Equal(t, "https://polymarket.com/profile/0xabc", task.ProfileURL)
	assert.Equal(t, 1000.0, task.InitialFinance)
	assert.Equal(t, 850.5, task.CurrentBalance)
	assert.Equal(t, 25.0, task.FixedAmount)
	assert.Equal(t, domain.TaskStatusRunning, task.Status)
	assert.Equal(t, int64(1700000000000), task.CreatedAt)
}

func TestDecodeTaskLegacyWalletField(t *testing.T) {
	payload := []byte(`{"id": "t", "type": "mock", "wallet": "0xlegacy", "createdAt": 5}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, "0xlegacy", task.MyWalletAddress)
	assert.Equal(t, domain.TaskModeMock, task.Mode)
}

func TestDecodeTaskPrefersMyWalletAddress(t *testing.T) {
	payload := []byte(`{"id": "t", "myWalletAddress": "0xnew", "wallet": "0xold", "createdAt": 5}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, "0xnew", task.MyWalletAddress)
}

func TestDecodeTaskNormalizesBadValues(t *testing.T) {
	// Numbers stored as garbage decode to zero, unknown status becomes
	// running, unknown type becomes live.
	payload := []byte(`{
		"id": "t",
		"type": "paper",
		"initialFinance": {"nested": true},
		"currentBalance": null,
		"fixedAmount": "not-a-number",
		"status": "paused",
		"createdAt": 7
	}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskModeLive, task.Mode)
	assert.Equal(t, domain.TaskStatusRunning, task.Status)
	assert.Zero(t, task.InitialFinance)
	assert.Zero(t, task.CurrentBalance)
	assert.Zero(t, task.FixedAmount)
}

func TestDecodeTaskStringifiedNumbers(t *testing.T) {
	payload := []byte(`{"id": "t", "initialFinance": "1200.5", "createdAt": "1700000000000"}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, 1200.5, task.InitialFinance)
	assert.Equal(t, int64(1700000000000), task.CreatedAt)
}

func TestDecodeTaskStoppedStatus(t *testing.T) {
	payload := []byte(`{"id": "t", "status": "stopped", "createdAt": 5}`)

	task, err := decodeTask(payload)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusStopped, task.Status)
}

func TestDecodeTaskMissingCreatedAtDefaultsToNow(t *testing.T) {
	task, err := decodeTask([]byte(`{"id": "t"}`))
	require.NoError(t, err)

	assert.Positive(t, task.CreatedAt)
}

func TestDecodeTaskInvalidJSON(t *testing.T) {
	_, err := decodeTask([]byte(`{not json`))
	assert.Error(t, err)
}
