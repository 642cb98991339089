package response

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/llm"
	"finance-rag-be/pkg/rag/schema"
	"finance-rag-be/pkg/retry"
	"finance-rag-be/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	items []schema.NewsItem
	err   error
	gotN  int
}

func (s *stubRetriever) SearchNews(ctx context.Context, query string, n int) ([]schema.NewsItem, error) {
	s.gotN = n
	return s.items, s.err
}

type stubLLM struct {
	replies  []string
	errs     []error
	calls    int
	messages []llm.Message
	options  *llm.Options
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	i := s.calls
	s.calls++
	s.messages = history
	s.options = llm.NewOptions(0, opts...)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	reply := ""
	if i < len(s.replies) {
		reply = s.replies[i]
	} else if len(s.replies) > 0 {
		reply = s.replies[len(s.replies)-1]
	}
	return reply, err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

const validReply = `{
  "summary": "Apple looks solid.",
  "key_insights": ["Services growth", "Buybacks"],
  "top_news": [{"headline": "model pick", "summary": "", "ticker": "XYZ", "source": "", "relevance_score": 1}],
  "mentioned_tickers": ["MSFT", "AAPL"],
  "sentiment": "positive",
  "confidence_score": 0.8,
  "market_outlook": "Stable"
}`

func noSleepPolicy(attempts int) retry.Policy {
	return retry.Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Sleep:       func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func newsItems(n int) []schema.NewsItem {
	items := make([]schema.NewsItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, schema.NewsItem{Headline: "Market wrap", Summary: "stocks", Ticker: "SPY", Source: "s"})
	}
	return items
}

func TestGenerator_Answer_Success(t *testing.T) {
	items := newsItems(6)
	items = append(items, schema.NewsItem{Headline: "Apple outlook raised", Summary: "iPhone", Ticker: "AAPL", Source: "https://x"})
	retriever := &stubRetriever{items: items}
	model := &stubLLM{replies: []string{validReply}}

	g := NewGenerator(retriever, model, Config{Retry: noSleepPolicy(1)}, logger.NewNopLogger())
	res := g.Answer(context.Background(), "What's the outlook for AAPL?", Options{MaxResults: 7, Model: "gemini-2.5-pro"})

	require.True(t, res.OK())
	assert.Equal(t, 7, retriever.gotN)
	assert.Equal(t, "Apple looks solid.", res.Answer.Summary)
	assert.Equal(t, []string{"AAPL", "MSFT"}, res.Answer.MentionedTickers)

	// ranked list replaces the model's own picks
	require.Len(t, res.Answer.TopNews, schema.MaxTopNews)
	assert.Equal(t, "AAPL", res.Answer.TopNews[0].Ticker)
	assert.Greater(t, res.Answer.TopNews[0].RelevanceScore, 0.5)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llm.RoleSystem, model.messages[0].Role)
	assert.Contains(t, model.messages[0].Content, "Extracted tickers: AAPL")
	assert.Equal(t, "What's the outlook for AAPL?", model.messages[1].Content)
	assert.True(t, model.options.JSONMode)
	assert.Equal(t, "gemini-2.5-pro", model.options.Model)
}

func TestGenerator_Answer_VectorStoreFailure(t *testing.T) {
	retriever := &stubRetriever{err: apperror.VectorStore("similarity search", errors.New("index down"))}
	model := &stubLLM{replies: []string{validReply}}

	res := NewGenerator(retriever, model, Config{Retry: noSleepPolicy(1)}, logger.NewNopLogger()).
		Answer(context.Background(), "What's the outlook for AAPL?", Options{})

	assert.False(t, res.OK())
	assert.Equal(t, apperror.KindVectorStore, res.Kind)
	assert.Equal(t, 0.0, res.Answer.ConfidenceScore)
	assert.Empty(t, res.Answer.MentionedTickers)
	assert.Empty(t, res.Answer.TopNews)
	assert.Contains(t, res.Answer.Summary, "knowledge base")
	assert.Equal(t, 0, model.calls)
}

func TestGenerator_Answer_SchemaViolationIsLLMError(t *testing.T) {
	model := &stubLLM{replies: []string{`{"summary": "missing everything else"}`}}

	res := NewGenerator(&stubRetriever{}, model, Config{Retry: noSleepPolicy(2)}, logger.NewNopLogger()).
		Answer(context.Background(), "market today", Options{})

	assert.Equal(t, apperror.KindLLM, res.Kind)
	assert.Equal(t, 2, model.calls)
	assert.Equal(t, schema.SentimentNeutral, res.Answer.Sentiment)
}

func TestGenerator_Answer_RetriesCompletion(t *testing.T) {
	model := &stubLLM{
		replies: []string{"", validReply},
		errs:    []error{errors.New("503 overloaded"), nil},
	}

	res := NewGenerator(&stubRetriever{}, model, Config{Retry: noSleepPolicy(3), Timeout: time.Second}, logger.NewNopLogger()).
		Answer(context.Background(), "Should I buy MSFT?", Options{})

	require.True(t, res.OK())
	assert.Equal(t, 2, model.calls)
	assert.Empty(t, res.Answer.TopNews)
	assert.NotNil(t, res.Answer.TopNews)
}

func TestGenerator_Answer_ExtractorPanic(t *testing.T) {
	g := NewGenerator(&stubRetriever{}, &stubLLM{replies: []string{validReply}}, Config{Retry: noSleepPolicy(1)}, logger.NewNopLogger()).
		WithExtractor(func(string) ticker.Extraction { panic("bad regex") })

	res := g.Answer(context.Background(), "AAPL", Options{})

	assert.Equal(t, apperror.KindTickerExtraction, res.Kind)
	assert.Contains(t, res.Answer.Summary, "which stocks")
}

type panickingRetriever struct{}

func (panickingRetriever) SearchNews(ctx context.Context, query string, n int) ([]schema.NewsItem, error) {
	panic("nil pointer")
}

func TestGenerator_Answer_RecoversPanics(t *testing.T) {
	res := NewGenerator(panickingRetriever{}, &stubLLM{}, Config{Retry: noSleepPolicy(1)}, logger.NewNopLogger()).
		Answer(context.Background(), "anything", Options{})

	assert.Equal(t, apperror.KindUnknown, res.Kind)
	assert.Error(t, res.Err)
	assert.Contains(t, res.Answer.Summary, "nil pointer")
	assert.Equal(t, 0.0, res.Answer.ConfidenceScore)
}

func TestReconcile(t *testing.T) {
	ans := &schema.Answer{MentionedTickers: []string{"TSLA", "AAPL"}}
	reconcile(ans, []string{"AAPL", "NVDA"}, newsItems(2))

	assert.ElementsMatch(t, []string{"AAPL", "NVDA", "TSLA"}, ans.MentionedTickers)
	assert.Len(t, ans.TopNews, 2)
}
