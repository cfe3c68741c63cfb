package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationTaskID(t *testing.T) {
	assert.Equal(t, "t1", Notification{TaskID: "t1"}.CorrelationTaskID())
	assert.Equal(t, "t2", Notification{Data: json.RawMessage(`{"id":"t2"}`)}.CorrelationTaskID())
	assert.Equal(t, "t1", Notification{TaskID: "t1", Data: json.RawMessage(`{"id":"t2"}`)}.CorrelationTaskID(),
		"top-level taskId wins over the payload id")
	assert.Empty(t, Notification{Data: json.RawMessage(`not json`)}.CorrelationTaskID())
	assert.Empty(t, Notification{}.CorrelationTaskID())
}

func TestMatchesKey(t *testing.T) {
	t.Run("unscoped request matches everything", func(t *testing.T) {
		assert.True(t, Notification{TaskID: "anything"}.MatchesKey("", ""))
		assert.True(t, Notification{}.MatchesKey("", ""))
	})

	t.Run("task id match", func(t *testing.T) {
		assert.True(t, Notification{TaskID: "t1"}.MatchesKey("t1", ""))
		assert.True(t, Notification{Data: json.RawMessage(`{"id":"t1"}`)}.MatchesKey("t1", ""))
		assert.False(t, Notification{TaskID: "t2"}.MatchesKey("t1", ""))
	})

	t.Run("address match is case-insensitive", func(t *testing.T) {
		assert.True(t, Notification{Address: "0xABCdef"}.MatchesKey("", "0xabcDEF"))
		assert.False(t, Notification{Address: "0x1111"}.MatchesKey("", "0x2222"))
	})

	t.Run("unkeyed notification is a broadcast", func(t *testing.T) {
		assert.True(t, Notification{Event: EventTaskError}.MatchesKey("t1", ""))
		assert.True(t, Notification{Event: EventTaskCreated}.MatchesKey("", "0xabc"))
	})

	t.Run("keyed notification for another task does not match", func(t *testing.T) {
		assert.False(t, Notification{TaskID: "other", Address: "0x9999"}.MatchesKey("t1", "0xabc"))
	})
}

func TestTaskCommandOmitsEmptyFields(t *testing.T) {
	raw, err := json.Marshal(TaskCommand{Action: ActionStop, TaskID: "t1"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"action":"stop","taskId":"t1"}`, string(raw))
}
