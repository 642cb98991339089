package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/ingestion"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jobRecorder struct {
	IIngestionService
	jobs chan *dto.IngestJobMessage
}

func (r *jobRecorder) RunJob(ctx context.Context, job *dto.IngestJobMessage) (*ingestion.Report, error) {
	r.jobs <- job
	return &ingestion.Report{}, nil
}

func TestConsumer_RunsQueuedJob(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	rec := &jobRecorder{jobs: make(chan *dto.IngestJobMessage, 1)}
	consumer := NewConsumerService(pubsub, "ingestion.jobs", rec, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, consumer.Consume(ctx))

	payload, err := json.Marshal(dto.IngestJobMessage{JobId: "j-42", Tickers: []string{"AAPL"}, StartDate: "2024-03-01", EndDate: "2024-03-01"})
	require.NoError(t, err)
	require.NoError(t, pubsub.Publish("ingestion.jobs", message.NewMessage(watermill.NewUUID(), payload)))

	select {
	case job := <-rec.jobs:
		assert.Equal(t, "j-42", job.JobId)
		assert.Equal(t, []string{"AAPL"}, job.Tickers)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not consumed")
	}
}

func TestConsumer_AcksMalformedPayload(t *testing.T) {
	rec := &jobRecorder{jobs: make(chan *dto.IngestJobMessage, 1)}
	cs := &consumerService{ingestion: rec, logger: logger.NewNopLogger()}

	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	cs.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("malformed message was not acked")
	}
	assert.Empty(t, rec.jobs)
}
