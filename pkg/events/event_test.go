package events

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIngestionEvents(t *testing.T) {
	at := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	done := IngestionCompleted("job-1", []string{"AAPL"}, map[string]interface{}{"inserted": 3}, at)
	assert.Equal(t, TypeIngestionCompleted, done.EventType())
	assert.Equal(t, "job-1", done.Payload()["job_id"])
	assert.Equal(t, 3, done.Payload()["inserted"])
	assert.Equal(t, at, done.Timestamp())

	failed := IngestionFailed("job-2", nil, errors.New("finnhub down"), at)
	assert.Equal(t, TypeIngestionFailed, failed.EventType())
	assert.Equal(t, "finnhub down", failed.Payload()["error"])
}
