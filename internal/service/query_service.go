package service

import (
	"context"
	"time"
	"unicode/utf8"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/rag/prompt"
	"finance-rag-be/pkg/rag/response"
	"finance-rag-be/pkg/rag/schema"
)

type IQueryService interface {
	// ProcessQuery always returns a complete response, including for empty
	// or failing queries.
	ProcessQuery(ctx context.Context, req *dto.QueryRequest) *dto.QueryResponse
}

// Answerer is implemented by response.Generator.
type Answerer interface {
	Answer(ctx context.Context, query string, opts response.Options) response.Result
}

type QueryDefaults struct {
	Model          string
	DefaultResults int
	MaxResults     int
}

type queryService struct {
	answerer     Answerer
	defaults     QueryDefaults
	logger       logger.ILogger
	interactions logger.ILogger
}

func NewQueryService(answerer Answerer, defaults QueryDefaults, log logger.ILogger, interactions logger.ILogger) IQueryService {
	return &queryService{
		answerer:     answerer,
		defaults:     defaults,
		logger:       log,
		interactions: interactions,
	}
}

func (s *queryService) ProcessQuery(ctx context.Context, req *dto.QueryRequest) *dto.QueryResponse {
	start := time.Now()

	includeNews := true
	if req.IncludeNews != nil {
		includeNews = *req.IncludeNews
	}

	model := req.Model
	if model == "" {
		model = s.defaults.Model
	}

	res := s.answerer.Answer(ctx, req.Query, response.Options{
		Model:         model,
		MaxResults:    s.clampResults(req.MaxResults),
		AnalysisDepth: prompt.ParseDepth(req.AnalysisDepth),
	})

	out := toQueryResponse(res.Answer, includeNews)
	s.logInteraction(req.Query, res, out, time.Since(start))
	return out
}

func (s *queryService) clampResults(n int) int {
	if n <= 0 {
		n = s.defaults.DefaultResults
	}
	if s.defaults.MaxResults > 0 && n > s.defaults.MaxResults {
		n = s.defaults.MaxResults
	}
	if n < 1 {
		n = 1
	}
	return n
}

func toQueryResponse(ans schema.Answer, includeNews bool) *dto.QueryResponse {
	news := ans.TopNews
	if !includeNews || news == nil {
		news = []schema.NewsItem{}
	}

	insights := ans.KeyInsights
	if insights == nil {
		insights = []string{}
	}
	tickers := ans.MentionedTickers
	if tickers == nil {
		tickers = []string{}
	}

	return &dto.QueryResponse{
		Summary:          ans.Summary,
		KeyInsights:      insights,
		MentionedTickers: tickers,
		Sentiment:        ans.Sentiment,
		ConfidenceScore:  ans.ConfidenceScore,
		RelatedNews:      news,
		Sources:          []string{},
	}
}

func (s *queryService) logInteraction(query string, res response.Result, out *dto.QueryResponse, elapsed time.Duration) {
	details := map[string]interface{}{
		"query":              truncateRunes(query, 100),
		"processing_time_ms": elapsed.Milliseconds(),
		"confidence_score":   out.ConfidenceScore,
		"tickers_mentioned":  out.MentionedTickers,
		"sentiment":          string(out.Sentiment),
		"news_count":         len(out.RelatedNews),
		"insights_count":     len(out.KeyInsights),
	}

	if !res.OK() {
		details["error_kind"] = res.Kind.String()
		details["error"] = res.Err.Error()
		s.interactions.Warn("INTERACTION", "Query answered with fallback", details)
		return
	}
	s.interactions.Info("INTERACTION", "Query answered", details)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
