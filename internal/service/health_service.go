package service

import (
	"context"
	"sync"
	"time"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/repository/unitofwork"

	"golang.org/x/sync/errgroup"
)

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthDown     = "down"
)

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

// HealthProbe is one named dependency check.
type HealthProbe struct {
	Name  string
	Check func(ctx context.Context) (detail string, err error)
}

type healthService struct {
	probes  []HealthProbe
	timeout time.Duration
}

func NewHealthService(timeout time.Duration, probes ...HealthProbe) IHealthService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &healthService{probes: probes, timeout: timeout}
}

// Check runs every probe concurrently. A failing probe degrades the status
// but never fails the others.
func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]dto.HealthCheck, len(s.probes))
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, probe := range s.probes {
		g.Go(func() error {
			start := time.Now()
			detail, err := probe.Check(gctx)

			check := dto.HealthCheck{Status: healthOK, Detail: detail, LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				check.Status = healthDown
				check.Detail = err.Error()
			}

			mu.Lock()
			checks[probe.Name] = check
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := healthOK
	for _, c := range checks {
		if c.Status != healthOK {
			status = healthDegraded
			break
		}
	}
	return &dto.HealthResponse{Status: status, Checks: checks}
}

// StoreProbes checks the document store and vector index through a unit of
// work.
func StoreProbes(factory unitofwork.RepositoryFactory) []HealthProbe {
	return []HealthProbe{
		{
			Name: "document_store",
			Check: func(ctx context.Context) (string, error) {
				uow := factory.NewUnitOfWork(ctx)
				if _, err := uow.NewsDocumentRepository().FindOne(ctx); err != nil {
					return "", err
				}
				return "reachable", nil
			},
		},
		{
			Name: "vector_index",
			Check: func(ctx context.Context) (string, error) {
				uow := factory.NewUnitOfWork(ctx)
				n, err := uow.VectorEntryRepository().Count(ctx)
				if err != nil {
					return "", err
				}
				if n == 0 {
					return "empty", nil
				}
				return "populated", nil
			},
		},
	}
}
