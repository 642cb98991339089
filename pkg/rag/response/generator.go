package response

import (
	"context"
	"fmt"
	"sort"
	"time"

	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/llm"
	"finance-rag-be/pkg/rag/compose"
	"finance-rag-be/pkg/rag/fallback"
	"finance-rag-be/pkg/rag/prompt"
	"finance-rag-be/pkg/rag/rank"
	"finance-rag-be/pkg/rag/schema"
	"finance-rag-be/pkg/retry"
	"finance-rag-be/pkg/ticker"
)

// NewsRetriever returns parsed news items for a query.
type NewsRetriever interface {
	SearchNews(ctx context.Context, query string, n int) ([]schema.NewsItem, error)
}

// TickerExtractor is ticker.Extract behind a seam.
type TickerExtractor func(query string) ticker.Extraction

type Config struct {
	// Timeout bounds each completion call. Zero means no extra deadline.
	Timeout time.Duration
	Retry   retry.Policy
}

type Options struct {
	Model         string
	MaxResults    int
	AnalysisDepth prompt.AnalysisDepth
}

// Result is the outcome of one question. Answer is always usable: on
// failure it holds the fallback for Kind.
type Result struct {
	Answer     schema.Answer
	Extraction ticker.Extraction
	Kind       apperror.Kind
	Err        error
}

func (r Result) OK() bool { return r.Err == nil }

// Generator runs extraction, retrieval, ranking, prompting and
// reconciliation for a single question.
type Generator struct {
	extract   TickerExtractor
	retriever NewsRetriever
	llm       llm.LLMProvider
	cfg       Config
	logger    logger.ILogger
}

func NewGenerator(retriever NewsRetriever, provider llm.LLMProvider, cfg Config, log logger.ILogger) *Generator {
	return &Generator{
		extract:   ticker.Extract,
		retriever: retriever,
		llm:       provider,
		cfg:       cfg,
		logger:    log,
	}
}

// WithExtractor replaces the ticker extractor.
func (g *Generator) WithExtractor(fn TickerExtractor) *Generator {
	g.extract = fn
	return g
}

// Answer never fails: errors and panics are turned into a fallback answer
// and reported through Result.Kind / Result.Err.
func (g *Generator) Answer(ctx context.Context, query string, opts Options) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic while answering: %v", rec)
			g.logger.Error("GENERATOR", "Recovered from panic", map[string]interface{}{"error": err.Error()})
			res = Result{Answer: fallback.For(apperror.KindUnknown, err), Kind: apperror.KindUnknown, Err: err}
		}
	}()

	ans, extraction, err := g.generate(ctx, query, opts)
	if err != nil {
		kind := apperror.KindOf(err)
		g.logger.Error("GENERATOR", "Answer generation failed", map[string]interface{}{
			"kind":  kind.String(),
			"error": err.Error(),
		})
		return Result{Answer: fallback.For(kind, err), Extraction: extraction, Kind: kind, Err: err}
	}

	return Result{Answer: *ans, Extraction: extraction, Kind: apperror.KindUnknown}
}

func (g *Generator) generate(ctx context.Context, query string, opts Options) (*schema.Answer, ticker.Extraction, error) {
	// 1. Tickers and intent
	extraction, err := g.extractTickers(query)
	if err != nil {
		return nil, extraction, err
	}
	g.logger.Debug("GENERATOR", "Extracted tickers", map[string]interface{}{
		"tickers":    extraction.Tickers,
		"confidence": extraction.Confidence,
		"query_type": string(extraction.QueryType),
	})

	// 2-3. Retrieval and parsing
	items, err := g.retriever.SearchNews(ctx, query, opts.MaxResults)
	if err != nil {
		return nil, extraction, err
	}

	// 4-5. Ranking and context
	ranked := rank.Rank(items, query, extraction.Tickers)
	systemPrompt := prompt.BuildSystemPrompt(prompt.PromptInput{
		Context:       compose.Compose(ranked),
		QueryType:     extraction.QueryType,
		Tickers:       extraction.Tickers,
		AnalysisDepth: opts.AnalysisDepth,
	})

	// 6-7. Completion
	ans, err := g.complete(ctx, systemPrompt, query, opts.Model)
	if err != nil {
		return nil, extraction, err
	}

	// 8. Reconcile
	reconcile(ans, extraction.Tickers, ranked)
	return ans, extraction, nil
}

func (g *Generator) extractTickers(query string) (extraction ticker.Extraction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = apperror.TickerExtraction("extract tickers", fmt.Errorf("%v", rec))
		}
	}()
	return g.extract(query), nil
}

func (g *Generator) complete(ctx context.Context, systemPrompt, query, model string) (*schema.Answer, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: query},
	}
	callOpts := []llm.Option{llm.WithJSONMode()}
	if model != "" {
		callOpts = append(callOpts, llm.WithModel(model))
	}

	policy := g.cfg.Retry
	policy.OnRetry = func(attempt int, err error, wait time.Duration) {
		g.logger.Warn("GENERATOR", "Completion attempt failed, retrying", map[string]interface{}{
			"attempt": attempt,
			"wait":    wait.String(),
			"error":   err.Error(),
		})
	}

	ans, err := retry.DoValue(ctx, policy, func(ctx context.Context) (*schema.Answer, error) {
		callCtx := ctx
		if g.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
			defer cancel()
		}

		raw, err := g.llm.Chat(callCtx, messages, callOpts...)
		if err != nil {
			return nil, err
		}
		return schema.ParseAnswer(raw)
	})
	if err != nil {
		return nil, apperror.LLM("generate answer", err)
	}
	return ans, nil
}

// reconcile makes the extracted tickers and the ranked list authoritative
// over what the model reported.
func reconcile(ans *schema.Answer, extracted []string, ranked []schema.NewsItem) {
	set := make(map[string]struct{}, len(ans.MentionedTickers)+len(extracted))
	for _, t := range ans.MentionedTickers {
		set[t] = struct{}{}
	}
	for _, t := range extracted {
		set[t] = struct{}{}
	}
	tickers := make([]string, 0, len(set))
	for t := range set {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	ans.MentionedTickers = tickers

	n := len(ranked)
	if n > schema.MaxTopNews {
		n = schema.MaxTopNews
	}
	top := make([]schema.NewsItem, n)
	copy(top, ranked[:n])
	ans.TopNews = top
}
