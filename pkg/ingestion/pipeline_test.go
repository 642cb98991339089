package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/embedding"
	"finance-rag-be/pkg/news"
	"finance-rag-be/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	articles map[string][]news.Article // key: ticker|date
	failOn   string
	calls    []string
}

func (f *fakeSource) FetchCompanyNews(ctx context.Context, ticker string, date time.Time) ([]news.Article, error) {
	key := ticker + "|" + date.Format("2006-01-02")
	f.calls = append(f.calls, key)
	if key == f.failOn {
		return nil, apperror.ExternalData("fetch company news", errors.New("connection reset"))
	}
	return f.articles[key], nil
}

type memStore struct {
	docs    []*entity.NewsDocument
	indexed map[string]bool
	inserts int
}

func newMemStore() *memStore {
	return &memStore{indexed: map[string]bool{}}
}

func (m *memStore) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for _, u := range urls {
		for _, d := range m.docs {
			if d.Url == u {
				out[u] = struct{}{}
			}
		}
	}
	return out, nil
}

func (m *memStore) CreateBulk(ctx context.Context, docs []*entity.NewsDocument) error {
	m.inserts += len(docs)
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *memStore) FindUnindexed(ctx context.Context, limit int) ([]*entity.NewsDocument, error) {
	var out []*entity.NewsDocument
	for _, d := range m.docs {
		if !m.indexed[d.Url] {
			out = append(out, d)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memIndex struct {
	store   *memStore
	entries []*entity.VectorEntry
	failFor map[string]int // url -> remaining failures
}

func (m *memIndex) Insert(ctx context.Context, e *entity.VectorEntry) error {
	src := e.MetadataString(entity.MetadataSource)
	if m.failFor[src] > 0 {
		m.failFor[src]--
		return errors.New("index unavailable")
	}
	m.entries = append(m.entries, e)
	if m.store != nil {
		m.store.indexed[src] = true
	}
	return nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}}}, nil
}

func article(id int64, ticker, headline string) news.Article {
	return news.Article{
		ID:       id,
		Category: "company",
		Datetime: time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC).Unix(),
		Headline: headline,
		Related:  ticker,
		Source:   "Reuters",
		Summary:  "summary " + headline,
		URL:      fmt.Sprintf("https://news.example.com/%d", id),
	}
}

func english(s string) bool { return !strings.HasPrefix(s, "[fr]") }

func noSleep(ctx context.Context, d time.Duration) error { return nil }

func newTestPipeline(src news.Source, store *memStore, index *memIndex, throttle *Throttle) *Pipeline {
	if throttle == nil {
		throttle = NewThrottle(30, time.Minute, noSleep)
	}
	policy := retry.Policy{MaxAttempts: 2, BaseDelay: time.Second, Multiplier: 2, Sleep: noSleep}
	return NewPipeline(src, store, index, fakeEmbedder{}, throttle, policy, logger.NewNopLogger()).
		WithLanguageFilter(english)
}

var june10 = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func TestPipeline_Run_OnlyNewDocumentsInsertedOnRerun(t *testing.T) {
	src := &fakeSource{articles: map[string][]news.Article{
		"AAPL|2025-06-10": {article(1, "AAPL", "Apple one"), article(2, "AAPL", "Apple two"), article(3, "AAPL", "Apple three")},
	}}
	store := newMemStore()
	index := &memIndex{store: store}
	p := newTestPipeline(src, store, index, nil)
	req := Request{Tickers: []string{"AAPL"}, Start: june10, End: june10}

	report, err := p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 3, report.Indexed)

	src.articles["AAPL|2025-06-10"] = append(src.articles["AAPL|2025-06-10"], article(4, "AAPL", "Apple four"))
	report, err = p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 3, report.Duplicates)
	assert.Equal(t, 4, store.inserts)
	require.Len(t, index.entries, 4)

	last := index.entries[3]
	assert.Equal(t, "Headline: Apple four Summary: summary Apple four Ticker: AAPL", last.Content)
	assert.Equal(t, "https://news.example.com/4", last.MetadataString(entity.MetadataSource))
	assert.Equal(t, "AAPL", last.MetadataString(entity.MetadataTicker))

	// unchanged source, third run inserts nothing
	report, err = p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, report.Inserted)
	assert.Equal(t, 4, store.inserts)
}

func TestPipeline_Run_IteratesTickersThenDays(t *testing.T) {
	src := &fakeSource{}
	p := newTestPipeline(src, newMemStore(), &memIndex{}, nil)

	_, err := p.Run(context.Background(), Request{
		Tickers: []string{"AAPL", "MSFT"},
		Start:   june10,
		End:     june10.AddDate(0, 0, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AAPL|2025-06-10", "AAPL|2025-06-11", "AAPL|2025-06-12",
		"MSFT|2025-06-10", "MSFT|2025-06-11", "MSFT|2025-06-12",
	}, src.calls)
}

func TestPipeline_Run_FiltersAndValidates(t *testing.T) {
	bad := article(5, "AAPL", "No url")
	bad.URL = ""
	noRelated := article(6, "", "Stamped with requested ticker")

	src := &fakeSource{articles: map[string][]news.Article{
		"AAPL|2025-06-10": {
			article(1, "AAPL", "Apple one"),
			article(2, "AAPL", "[fr] Apple deux"),
			bad,
			article(1, "AAPL", "Apple one"), // repeated in the same batch
			noRelated,
		},
	}}
	store := newMemStore()
	p := newTestPipeline(src, store, &memIndex{}, nil)

	report, err := p.Run(context.Background(), Request{Tickers: []string{"AAPL"}, Start: june10, End: june10})
	require.NoError(t, err)

	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 1, report.NonEnglish)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 2, report.Inserted)
	require.Len(t, store.docs, 2)
	assert.Equal(t, "2025-06-10", store.docs[0].Date)
	assert.Equal(t, "AAPL", store.docs[1].Ticker)
}

func TestPipeline_Run_SourceFailureAborts(t *testing.T) {
	src := &fakeSource{
		articles: map[string][]news.Article{"AAPL|2025-06-10": {article(1, "AAPL", "Apple one")}},
		failOn:   "AAPL|2025-06-11",
	}
	store := newMemStore()
	p := newTestPipeline(src, store, &memIndex{}, nil)

	report, err := p.Run(context.Background(), Request{Tickers: []string{"AAPL", "MSFT"}, Start: june10, End: june10.AddDate(0, 0, 3)})

	require.Error(t, err)
	assert.Equal(t, apperror.KindExternalData, apperror.KindOf(err))
	assert.Equal(t, 2, report.Requests)
	assert.Empty(t, store.docs)
}

func TestPipeline_Run_Throttles(t *testing.T) {
	rec := &sleepRecorder{}
	p := newTestPipeline(&fakeSource{}, newMemStore(), &memIndex{}, NewThrottle(30, time.Minute, rec.Sleep))

	report, err := p.Run(context.Background(), Request{
		Tickers: []string{"AAPL", "MSFT", "TSLA"},
		Start:   june10,
		End:     june10.AddDate(0, 0, 19),
	})
	require.NoError(t, err)
	assert.Equal(t, 60, report.Requests)
	assert.Equal(t, []time.Duration{time.Minute, time.Minute}, rec.waits)
	assert.Equal(t, 2, report.Pauses)
}

func TestPipeline_IndexingRetriesThenBackfillHeals(t *testing.T) {
	src := &fakeSource{articles: map[string][]news.Article{
		"AAPL|2025-06-10": {article(1, "AAPL", "Apple one"), article(2, "AAPL", "Apple two"), article(3, "AAPL", "Apple three")},
	}}
	store := newMemStore()
	index := &memIndex{store: store, failFor: map[string]int{
		"https://news.example.com/1": 1, // recovers on retry
		"https://news.example.com/2": 5, // exhausts retries
	}}
	p := newTestPipeline(src, store, index, nil)

	report, err := p.Run(context.Background(), Request{Tickers: []string{"AAPL"}, Start: june10, End: june10})
	require.Error(t, err)
	assert.Equal(t, apperror.KindVectorStore, apperror.KindOf(err))
	assert.Equal(t, 3, report.Inserted)
	assert.Equal(t, 1, report.Indexed)

	index.failFor = nil
	report, err = p.Backfill(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Indexed)
	assert.Len(t, index.entries, 3)
}
