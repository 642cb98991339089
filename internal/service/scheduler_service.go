package service

import (
	"context"
	"time"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"

	"github.com/robfig/cron/v3"
)

// IngestionScheduler queues a default ingestion job on a cron schedule.
type IngestionScheduler struct {
	ingestion IIngestionService
	cron      *cron.Cron
	logger    logger.ILogger
}

func NewIngestionScheduler(ingestion IIngestionService, log logger.ILogger) *IngestionScheduler {
	return &IngestionScheduler{
		ingestion: ingestion,
		cron:      cron.New(),
		logger:    log,
	}
}

// Start registers schedule (standard 5-field cron syntax). An empty
// schedule leaves the scheduler idle.
func (s *IngestionScheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("SCHEDULER", "No ingestion schedule configured", nil)
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runScheduled); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("SCHEDULER", "Ingestion scheduler started", map[string]interface{}{"schedule": schedule})
	return nil
}

// Stop waits for a running trigger to return.
func (s *IngestionScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("SCHEDULER", "Ingestion scheduler stopped", nil)
}

func (s *IngestionScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := s.ingestion.Enqueue(ctx, &dto.IngestRequest{})
	if err != nil {
		s.logger.Error("SCHEDULER", "Failed to queue scheduled ingestion", map[string]interface{}{"error": err.Error()})
		return
	}
	s.logger.Info("SCHEDULER", "Scheduled ingestion queued", map[string]interface{}{
		"job_id": res.JobId,
		"start":  res.StartDate,
		"end":    res.EndDate,
	})
}
