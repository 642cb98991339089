package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/events"
	"finance-rag-be/pkg/ingestion"
	"finance-rag-be/pkg/lock"
	"finance-rag-be/pkg/validate"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	mu       sync.Mutex
	requests []ingestion.Request
	report   *ingestion.Report
	err      error
	limit    int
}

func (f *fakeRunner) Run(ctx context.Context, req ingestion.Request) (*ingestion.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.report == nil {
		return &ingestion.Report{}, f.err
	}
	return f.report, f.err
}

func (f *fakeRunner) Backfill(ctx context.Context, limit int) (*ingestion.Report, error) {
	f.limit = limit
	return &ingestion.Report{Indexed: 3}, f.err
}

type busyLocker struct{}

func (busyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Lease, error) {
	return nil, lock.ErrNotAcquired
}

type recordingEvents struct {
	events []events.Event
}

func (r *recordingEvents) Publish(ctx context.Context, ev events.Event) error {
	r.events = append(r.events, ev)
	return nil
}

type recordingPublisher struct {
	topic    string
	messages []*message.Message
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.topic = topic
	p.messages = append(p.messages, msgs...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newIngestionService(runner Runner, locker lock.Locker, pub message.Publisher, ev events.Publisher, sp500 TickerLister) IIngestionService {
	return NewIngestionService(runner, locker, pub, ev, sp500, IngestionSettings{
		DefaultTickers: []string{"AAPL", "MSFT"},
		LookbackDays:   7,
		Topic:          "ingestion.jobs",
		LockTTL:        time.Hour,
	}, func() time.Time { return fixedNow }, logger.NewNopLogger())
}

func TestResolve_Defaults(t *testing.T) {
	svc := newIngestionService(&fakeRunner{}, lock.Noop{}, nil, nil, nil)

	job, err := svc.Resolve(context.Background(), &dto.IngestRequest{})

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, job.Tickers)
	assert.Equal(t, "2024-03-09", job.StartDate)
	assert.Equal(t, "2024-03-15", job.EndDate)
	assert.NotEmpty(t, job.JobId)
}

func TestResolve_SanitizesAndMergesSP500(t *testing.T) {
	sp500 := func(ctx context.Context) ([]string, error) {
		return []string{"AAPL", "brk.b", " NVDA "}, nil
	}
	svc := newIngestionService(&fakeRunner{}, lock.Noop{}, nil, nil, sp500)

	job, err := svc.Resolve(context.Background(), &dto.IngestRequest{
		Tickers:   []string{"aapl", "TOOLONGX", "tsla"},
		StartDate: "2024-03-01",
		EndDate:   "2024-03-02",
		UseSP500:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA", "BRK.B", "NVDA"}, job.Tickers)
	assert.Equal(t, "2024-03-01", job.StartDate)
}

func TestResolve_RejectsBadRanges(t *testing.T) {
	svc := newIngestionService(&fakeRunner{}, lock.Noop{}, nil, nil, nil)

	cases := []struct {
		name string
		req  dto.IngestRequest
		msg  string
	}{
		{"reversed", dto.IngestRequest{StartDate: "2024-03-10", EndDate: "2024-03-01"}, "Start date must be before end date."},
		{"future", dto.IngestRequest{StartDate: "2024-03-10", EndDate: "2024-04-01"}, "Dates cannot be in the future."},
		{"too long", dto.IngestRequest{StartDate: "2022-01-01", EndDate: "2024-03-01"}, "Date range cannot exceed 1 year."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Resolve(context.Background(), &tc.req)
			var verr *validate.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.msg, verr.Message)
		})
	}
}

func TestIngest_RunsAndPublishesCompleted(t *testing.T) {
	runner := &fakeRunner{report: &ingestion.Report{Fetched: 4, Inserted: 3, Indexed: 3}}
	ev := &recordingEvents{}
	svc := newIngestionService(runner, lock.Noop{}, nil, ev, nil)

	res, err := svc.Ingest(context.Background(), &dto.IngestRequest{Tickers: []string{"AAPL"}, StartDate: "2024-03-14", EndDate: "2024-03-15"})

	require.NoError(t, err)
	assert.Equal(t, "completed", res.Status)
	assert.Equal(t, 3, res.Report.Inserted)
	require.Len(t, runner.requests, 1)
	assert.Equal(t, []string{"AAPL"}, runner.requests[0].Tickers)

	require.Len(t, ev.events, 1)
	assert.Equal(t, events.TypeIngestionCompleted, ev.events[0].EventType())
	assert.Equal(t, 3, ev.events[0].Payload()["inserted"])
}

func TestRunJob_FailurePublishesFailed(t *testing.T) {
	runner := &fakeRunner{err: errors.New("finnhub down")}
	ev := &recordingEvents{}
	svc := newIngestionService(runner, lock.Noop{}, nil, ev, nil)

	_, err := svc.RunJob(context.Background(), &dto.IngestJobMessage{JobId: "j1", Tickers: []string{"AAPL"}, StartDate: "2024-03-14", EndDate: "2024-03-14"})

	require.Error(t, err)
	require.Len(t, ev.events, 1)
	assert.Equal(t, events.TypeIngestionFailed, ev.events[0].EventType())
	assert.Equal(t, "finnhub down", ev.events[0].Payload()["error"])
}

func TestRunJob_LockHeld(t *testing.T) {
	runner := &fakeRunner{}
	svc := newIngestionService(runner, busyLocker{}, nil, nil, nil)

	_, err := svc.RunJob(context.Background(), &dto.IngestJobMessage{JobId: "j1", Tickers: []string{"AAPL"}, StartDate: "2024-03-14", EndDate: "2024-03-14"})

	assert.ErrorIs(t, err, ErrIngestionRunning)
	assert.Empty(t, runner.requests)
}

func TestEnqueue_PublishesJob(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newIngestionService(&fakeRunner{}, lock.Noop{}, pub, nil, nil)

	res, err := svc.Enqueue(context.Background(), &dto.IngestRequest{Tickers: []string{"msft"}})

	require.NoError(t, err)
	assert.Equal(t, "queued", res.Status)
	assert.Equal(t, "ingestion.jobs", pub.topic)
	require.Len(t, pub.messages, 1)

	var job dto.IngestJobMessage
	require.NoError(t, json.Unmarshal(pub.messages[0].Payload, &job))
	assert.Equal(t, res.JobId, job.JobId)
	assert.Equal(t, []string{"MSFT"}, job.Tickers)
}

func TestBackfill_DefaultLimit(t *testing.T) {
	runner := &fakeRunner{}
	svc := newIngestionService(runner, lock.Noop{}, nil, nil, nil)

	res, err := svc.Backfill(context.Background(), &dto.BackfillRequest{})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, defaultBackfill, runner.limit)
}

type releaseRecorder struct {
	err         error
	released    int
	hasDeadline bool
	ctxErr      error
}

func (r *releaseRecorder) Acquire(ctx context.Context, key string, ttl time.Duration) (lock.Lease, error) {
	return r, nil
}

func (r *releaseRecorder) Release(ctx context.Context) error {
	r.released++
	_, r.hasDeadline = ctx.Deadline()
	r.ctxErr = ctx.Err()
	return r.err
}

func TestBackfill_ReleasesLockWithTimeout(t *testing.T) {
	locker := &releaseRecorder{err: errors.New("redis gone")}
	svc := newIngestionService(&fakeRunner{}, locker, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Backfill(ctx, &dto.BackfillRequest{Limit: 10})
	cancel()

	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, 1, locker.released)
	assert.True(t, locker.hasDeadline)
	assert.NoError(t, locker.ctxErr)
}

func TestBackfill_ReleasesLockOnFailure(t *testing.T) {
	locker := &releaseRecorder{}
	svc := newIngestionService(&fakeRunner{err: errors.New("vector store down")}, locker, nil, nil, nil)

	_, err := svc.Backfill(context.Background(), &dto.BackfillRequest{})

	require.Error(t, err)
	assert.Equal(t, 1, locker.released)
}
