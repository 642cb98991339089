package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/clock"
	"finance-rag-be/pkg/events"
	"finance-rag-be/pkg/ingestion"
	"finance-rag-be/pkg/lock"
	"finance-rag-be/pkg/ticker"
	"finance-rag-be/pkg/validate"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const (
	dateLayout       = "2006-01-02"
	ingestionLockKey = "ingestion"
	defaultBackfill  = 500
	statusQueued     = "queued"
	statusCompleted  = "completed"
)

// ErrIngestionRunning means another ingestion run holds the lock.
var ErrIngestionRunning = errors.New("an ingestion run is already in progress")

type IIngestionService interface {
	// Resolve fills in default tickers and dates and validates the range.
	Resolve(ctx context.Context, req *dto.IngestRequest) (*dto.IngestJobMessage, error)
	// Ingest runs synchronously under the ingestion lock.
	Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	// RunJob executes an already resolved job under the ingestion lock.
	RunJob(ctx context.Context, job *dto.IngestJobMessage) (*ingestion.Report, error)
	// Enqueue publishes a job for the background consumer.
	Enqueue(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error)
	Backfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error)
}

// Runner is implemented by ingestion.Pipeline.
type Runner interface {
	Run(ctx context.Context, req ingestion.Request) (*ingestion.Report, error)
	Backfill(ctx context.Context, limit int) (*ingestion.Report, error)
}

// TickerLister returns a ticker universe, e.g. the S&P 500.
type TickerLister func(ctx context.Context) ([]string, error)

type IngestionSettings struct {
	DefaultTickers []string
	LookbackDays   int
	Topic          string
	LockTTL        time.Duration
}

type ingestionService struct {
	runner    Runner
	locker    lock.Locker
	publisher message.Publisher
	events    events.Publisher
	sp500     TickerLister
	settings  IngestionSettings
	now       clock.NowFunc
	logger    logger.ILogger
}

func NewIngestionService(
	runner Runner,
	locker lock.Locker,
	publisher message.Publisher,
	eventPublisher events.Publisher,
	sp500 TickerLister,
	settings IngestionSettings,
	now clock.NowFunc,
	log logger.ILogger,
) IIngestionService {
	if now == nil {
		now = clock.Now
	}
	if eventPublisher == nil {
		eventPublisher = events.Discard{}
	}
	return &ingestionService{
		runner:    runner,
		locker:    locker,
		publisher: publisher,
		events:    eventPublisher,
		sp500:     sp500,
		settings:  settings,
		now:       now,
		logger:    log,
	}
}

func (s *ingestionService) Resolve(ctx context.Context, req *dto.IngestRequest) (*dto.IngestJobMessage, error) {
	tickers := ticker.Sanitize(req.Tickers)

	if req.UseSP500 {
		if s.sp500 == nil {
			return nil, fmt.Errorf("s&p 500 listing is not configured")
		}
		listed, err := s.sp500(ctx)
		if err != nil {
			return nil, err
		}
		tickers = mergeTickers(tickers, listed)
	}
	if len(tickers) == 0 {
		tickers = ticker.Sanitize(s.settings.DefaultTickers)
	}
	if len(tickers) == 0 {
		return nil, &validate.ValidationError{Field: "tickers", Message: "No valid tickers to ingest."}
	}

	now := s.now()
	end := now
	if req.EndDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.EndDate, now.Location())
		if err != nil {
			return nil, &validate.ValidationError{Field: "end_date", Message: "End date must be YYYY-MM-DD."}
		}
		end = parsed
	}

	lookback := s.settings.LookbackDays
	if lookback < 1 {
		lookback = 1
	}
	start := end.AddDate(0, 0, -(lookback - 1))
	if req.StartDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, req.StartDate, now.Location())
		if err != nil {
			return nil, &validate.ValidationError{Field: "start_date", Message: "Start date must be YYYY-MM-DD."}
		}
		start = parsed
	}

	if err := validate.DateRange(start, end, now); err != nil {
		return nil, err
	}

	return &dto.IngestJobMessage{
		JobId:     uuid.NewString(),
		Tickers:   tickers,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
	}, nil
}

func (s *ingestionService) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	job, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	report, err := s.RunJob(ctx, job)
	if err != nil {
		return nil, err
	}

	return &dto.IngestResponse{
		JobId:     job.JobId,
		Status:    statusCompleted,
		Tickers:   job.Tickers,
		StartDate: job.StartDate,
		EndDate:   job.EndDate,
		Report:    report,
	}, nil
}

func (s *ingestionService) RunJob(ctx context.Context, job *dto.IngestJobMessage) (*ingestion.Report, error) {
	start, err := time.Parse(dateLayout, job.StartDate)
	if err != nil {
		return nil, fmt.Errorf("job %s: bad start date: %w", job.JobId, err)
	}
	end, err := time.Parse(dateLayout, job.EndDate)
	if err != nil {
		return nil, fmt.Errorf("job %s: bad end date: %w", job.JobId, err)
	}

	lease, err := s.locker.Acquire(ctx, ingestionLockKey, s.settings.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrIngestionRunning
		}
		return nil, err
	}
	defer s.release(lease)

	s.logger.Info("INGESTION", "Ingestion job started", map[string]interface{}{
		"job_id":  job.JobId,
		"tickers": len(job.Tickers),
		"start":   job.StartDate,
		"end":     job.EndDate,
	})

	report, runErr := s.runner.Run(ctx, ingestion.Request{Tickers: job.Tickers, Start: start, End: end})
	if runErr != nil {
		s.logger.Error("INGESTION", "Ingestion job failed", map[string]interface{}{
			"job_id": job.JobId,
			"error":  runErr.Error(),
		})
		s.publish(ctx, events.IngestionFailed(job.JobId, job.Tickers, runErr, s.now()))
		return report, runErr
	}

	s.publish(ctx, events.IngestionCompleted(job.JobId, job.Tickers, reportStats(report), s.now()))
	return report, nil
}

func (s *ingestionService) Enqueue(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	job, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.publisher.Publish(s.settings.Topic, msg); err != nil {
		return nil, fmt.Errorf("publish ingestion job: %w", err)
	}

	s.logger.Info("INGESTION", "Ingestion job queued", map[string]interface{}{"job_id": job.JobId})
	return &dto.IngestResponse{
		JobId:     job.JobId,
		Status:    statusQueued,
		Tickers:   job.Tickers,
		StartDate: job.StartDate,
		EndDate:   job.EndDate,
	}, nil
}

func (s *ingestionService) Backfill(ctx context.Context, req *dto.BackfillRequest) (*dto.BackfillResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultBackfill
	}

	lease, err := s.locker.Acquire(ctx, ingestionLockKey, s.settings.LockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotAcquired) {
			return nil, ErrIngestionRunning
		}
		return nil, err
	}
	defer s.release(lease)

	report, err := s.runner.Backfill(ctx, limit)
	if err != nil {
		indexed := 0
		if report != nil {
			indexed = report.Indexed
		}
		s.logger.Error("INGESTION", "Backfill failed", map[string]interface{}{
			"indexed": indexed,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &dto.BackfillResponse{Indexed: report.Indexed}, nil
}

// release drops the ingestion lock even if ctx was cancelled mid-run.
func (s *ingestionService) release(lease lock.Lease) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lease.Release(ctx); err != nil {
		s.logger.Warn("INGESTION", "Failed to release ingestion lock", map[string]interface{}{"error": err.Error()})
	}
}

func (s *ingestionService) publish(ctx context.Context, ev events.Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Warn("INGESTION", "Failed to publish event", map[string]interface{}{
			"type":  ev.EventType(),
			"error": err.Error(),
		})
	}
}

func reportStats(r *ingestion.Report) map[string]interface{} {
	if r == nil {
		return nil
	}
	return map[string]interface{}{
		"requests":    r.Requests,
		"fetched":     r.Fetched,
		"non_english": r.NonEnglish,
		"duplicates":  r.Duplicates,
		"invalid":     r.Invalid,
		"inserted":    r.Inserted,
		"indexed":     r.Indexed,
	}
}

// mergeTickers appends listed symbols not already present. Listed symbols
// are only trimmed and upper-cased so class shares like BRK.B survive.
func mergeTickers(base, listed []string) []string {
	seen := make(map[string]struct{}, len(base)+len(listed))
	out := make([]string, 0, len(base)+len(listed))
	for _, t := range base {
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range listed {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
