package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutboxMessage(t *testing.T) {
	msg, err := NewOutboxMessage("uuid-1", EventTypeResumeParsed, "resume.events.exchange", "resume.parsed",
		map[string]string{"submission_uuid": "uuid-1"})
	require.NoError(t, err)

	assert.Equal(t, "uuid-1", msg.AggregateID)
	assert.Equal(t, OutboxStatusPending, msg.Status)
	assert.Equal(t, "resume.parsed", msg.TargetRoutingKey)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
	assert.Equal(t, "uuid-1", payload["submission_uuid"])

	_, err = NewOutboxMessage("x", EventTypeResumeParsed, "e", "k", make(chan int))
	assert.Error(t, err)
}

func TestOutboxMessage_MarkPublished(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	msg := &OutboxMessage{Status: OutboxStatusPending}
	msg.MarkPublished(errors.New("connection refused"), 2, now)
	assert.Equal(t, OutboxStatusPending, msg.Status)
	assert.Equal(t, 1, msg.RetryCount)
	assert.Equal(t, "connection refused", msg.ErrorMessage)
	assert.Nil(t, msg.ProcessedAt)

	msg.MarkPublished(errors.New("connection refused"), 2, now)
	assert.Equal(t, OutboxStatusFailed, msg.Status)
	assert.Equal(t, 2, msg.RetryCount)

	msg = &OutboxMessage{Status: OutboxStatusPending, ErrorMessage: "old"}
	msg.MarkPublished(nil, 2, now)
	assert.Equal(t, OutboxStatusSent, msg.Status)
	assert.Empty(t, msg.ErrorMessage)
	require.NotNil(t, msg.ProcessedAt)
	assert.Equal(t, now, *msg.ProcessedAt)
}
