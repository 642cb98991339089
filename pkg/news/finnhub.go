package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/retry"
)

const DefaultFinnhubBaseURL = "https://finnhub.io/api/v1"

// retryableStatusError marks responses worth another attempt (429, 5xx).
type retryableStatusError struct {
	status int
	body   string
}

func (e *retryableStatusError) Error() string {
	return fmt.Sprintf("finnhub status %d: %s", e.status, e.body)
}

// IsRetryable reports whether err is a transport failure or a 429/5xx
// response. Context cancellation is never retried.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *retryableStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

type FinnhubClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	policy  retry.Policy
	logger  logger.ILogger
}

func NewFinnhubClient(baseURL, apiKey string, policy retry.Policy, log logger.ILogger) *FinnhubClient {
	if baseURL == "" {
		baseURL = DefaultFinnhubBaseURL
	}
	policy.Retryable = IsRetryable
	return &FinnhubClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		policy:  policy,
		logger:  log,
	}
}

// FetchCompanyNews calls /company-news for a single day. Non-success
// statuses other than 429 and 5xx yield an empty list; transport errors and
// 429/5xx are retried and then reported as external data errors.
func (c *FinnhubClient) FetchCompanyNews(ctx context.Context, ticker string, date time.Time) ([]Article, error) {
	day := date.Format(dateLayout)

	policy := c.policy
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		c.logger.Warn("FINNHUB", "Request failed, retrying", map[string]interface{}{
			"ticker":  ticker,
			"date":    day,
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	articles, err := retry.DoValue(ctx, policy, func(ctx context.Context) ([]Article, error) {
		return c.fetch(ctx, ticker, day)
	})
	if err != nil {
		return nil, apperror.ExternalData("fetch company news", err)
	}
	return articles, nil
}

func (c *FinnhubClient) fetch(ctx context.Context, ticker, day string) ([]Article, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	q.Set("from", day)
	q.Set("to", day)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/company-news?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &retryableStatusError{status: resp.StatusCode, body: truncate(string(body), 200)}
	default:
		c.logger.Warn("FINNHUB", "Non-success status, treating as no news", map[string]interface{}{
			"ticker": ticker,
			"date":   day,
			"status": resp.StatusCode,
		})
		return []Article{}, nil
	}

	var articles []Article
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("decode company news: %w", err)
	}
	if articles == nil {
		articles = []Article{}
	}
	return articles, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
