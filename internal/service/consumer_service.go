package service

import (
	"context"
	"encoding/json"
	"errors"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	ingestion  IIngestionService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	ingestion IIngestionService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		ingestion:  ingestion,
		logger:     log,
	}
}

// Consume subscribes and processes ingestion jobs one at a time in the
// background until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage always acks. A failed run is reported through the
// ingestion.failed event; redelivering it would hit the same failure.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var job dto.IngestJobMessage
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal ingestion job", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	report, err := cs.ingestion.RunJob(ctx, &job)
	if err != nil {
		if errors.Is(err, ErrIngestionRunning) {
			cs.logger.Warn("CONSUMER", "Skipping job, another run holds the lock", map[string]interface{}{"job_id": job.JobId})
			return
		}
		cs.logger.Error("CONSUMER", "Ingestion job failed", map[string]interface{}{
			"job_id": job.JobId,
			"error":  err.Error(),
		})
		return
	}

	cs.logger.Info("CONSUMER", "Ingestion job finished", map[string]interface{}{
		"job_id":   job.JobId,
		"inserted": report.Inserted,
		"indexed":  report.Indexed,
	})
}
