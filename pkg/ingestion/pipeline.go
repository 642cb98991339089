package ingestion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/embedding"
	"finance-rag-be/pkg/news"
	"finance-rag-be/pkg/rag/schema"
	"finance-rag-be/pkg/retry"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// DocumentStore is the part of the news document repository ingestion uses.
type DocumentStore interface {
	ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	CreateBulk(ctx context.Context, docs []*entity.NewsDocument) error
	FindUnindexed(ctx context.Context, limit int) ([]*entity.NewsDocument, error)
}

// VectorIndex accepts one entry per call.
type VectorIndex interface {
	Insert(ctx context.Context, entry *entity.VectorEntry) error
}

type Request struct {
	Tickers []string
	Start   time.Time
	End     time.Time
}

// Report summarizes one run.
type Report struct {
	Requests   int `json:"requests"`
	Fetched    int `json:"fetched"`
	NonEnglish int `json:"non_english"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Inserted   int `json:"inserted"`
	Indexed    int `json:"indexed"`
	Pauses     int `json:"pauses"`
}

type Pipeline struct {
	source    news.Source
	store     DocumentStore
	index     VectorIndex
	embedder  embedding.EmbeddingProvider
	throttle  *Throttle
	policy    retry.Policy
	isEnglish func(string) bool
	validate  *validator.Validate
	logger    logger.ILogger
}

func NewPipeline(
	source news.Source,
	store DocumentStore,
	index VectorIndex,
	embedder embedding.EmbeddingProvider,
	throttle *Throttle,
	policy retry.Policy,
	log logger.ILogger,
) *Pipeline {
	return &Pipeline{
		source:    source,
		store:     store,
		index:     index,
		embedder:  embedder,
		throttle:  throttle,
		policy:    policy,
		isEnglish: news.IsEnglish,
		validate:  validator.New(),
		logger:    log,
	}
}

// WithLanguageFilter replaces the English detector.
func (p *Pipeline) WithLanguageFilter(fn func(string) bool) *Pipeline {
	p.isEnglish = fn
	return p
}

// Run fetches every (ticker, day) pair in order, stores the documents not
// seen before and indexes each new one. A news-source failure aborts the
// run; whatever was collected before it is discarded.
//
// Duplicate detection is a read followed by a write. Two runs over the same
// range at the same time can both pass the check; the unique url index
// then fails one of the inserts.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	report := &Report{}
	start, end := truncateDay(req.Start), truncateDay(req.End)

	p.logger.Info("INGESTION", "Ingestion run started", map[string]interface{}{
		"tickers": len(req.Tickers),
		"start":   start.Format(dateLayout),
		"end":     end.Format(dateLayout),
	})

	var batch []*entity.NewsDocument
	for _, ticker := range req.Tickers {
		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			articles, err := p.source.FetchCompanyNews(ctx, ticker, day)
			report.Requests++
			if err != nil {
				report.Pauses = p.throttle.Pauses()
				return report, fmt.Errorf("fetch %s on %s: %w", ticker, day.Format(dateLayout), err)
			}

			report.Fetched += len(articles)
			for _, a := range articles {
				if !p.isEnglish(a.Headline) {
					report.NonEnglish++
					continue
				}
				batch = append(batch, toDocument(a, ticker))
			}

			if err := p.throttle.Tick(ctx); err != nil {
				report.Pauses = p.throttle.Pauses()
				return report, err
			}
		}
	}
	report.Pauses = p.throttle.Pauses()

	fresh, err := p.dedup(ctx, batch, report)
	if err != nil {
		return report, err
	}

	valid := p.validDocuments(fresh, report)
	if len(valid) == 0 {
		p.logger.Info("INGESTION", "No new documents to insert", map[string]interface{}{
			"fetched":    report.Fetched,
			"duplicates": report.Duplicates,
		})
		return report, nil
	}

	if err := p.store.CreateBulk(ctx, valid); err != nil {
		return report, apperror.Persistence("insert documents", err)
	}
	report.Inserted = len(valid)

	indexed, err := p.indexDocuments(ctx, valid)
	report.Indexed = indexed
	if err != nil {
		return report, err
	}

	p.logger.Info("INGESTION", "Ingestion run completed", map[string]interface{}{
		"requests":    report.Requests,
		"fetched":     report.Fetched,
		"non_english": report.NonEnglish,
		"duplicates":  report.Duplicates,
		"invalid":     report.Invalid,
		"inserted":    report.Inserted,
		"indexed":     report.Indexed,
	})
	return report, nil
}

// Backfill indexes stored documents that never reached the vector index,
// for example after a run failed between insert and indexing.
func (p *Pipeline) Backfill(ctx context.Context, limit int) (*Report, error) {
	docs, err := p.store.FindUnindexed(ctx, limit)
	if err != nil {
		return nil, apperror.Persistence("find unindexed documents", err)
	}

	report := &Report{}
	indexed, err := p.indexDocuments(ctx, docs)
	report.Indexed = indexed

	p.logger.Info("INGESTION", "Backfill finished", map[string]interface{}{
		"candidates": len(docs),
		"indexed":    indexed,
	})
	return report, err
}

// dedup drops urls repeated within the batch (first one wins) and urls the
// store already holds.
func (p *Pipeline) dedup(ctx context.Context, batch []*entity.NewsDocument, report *Report) ([]*entity.NewsDocument, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	seen := make(map[string]struct{}, len(batch))
	unique := make([]*entity.NewsDocument, 0, len(batch))
	urls := make([]string, 0, len(batch))
	for _, doc := range batch {
		if _, ok := seen[doc.Url]; ok {
			report.Duplicates++
			continue
		}
		seen[doc.Url] = struct{}{}
		unique = append(unique, doc)
		if doc.Url != "" {
			urls = append(urls, doc.Url)
		}
	}

	existing, err := p.store.ExistingURLs(ctx, urls)
	if err != nil {
		return nil, apperror.Persistence("check existing urls", err)
	}

	fresh := make([]*entity.NewsDocument, 0, len(unique))
	for _, doc := range unique {
		if _, ok := existing[doc.Url]; ok {
			report.Duplicates++
			continue
		}
		fresh = append(fresh, doc)
	}
	return fresh, nil
}

func (p *Pipeline) validDocuments(docs []*entity.NewsDocument, report *Report) []*entity.NewsDocument {
	valid := make([]*entity.NewsDocument, 0, len(docs))
	for _, doc := range docs {
		if err := p.validate.Struct(doc); err != nil {
			report.Invalid++
			p.logger.Warn("INGESTION", "Rejected malformed document", map[string]interface{}{
				"url":   doc.Url,
				"error": err.Error(),
			})
			continue
		}
		valid = append(valid, doc)
	}
	return valid
}

// indexDocuments embeds and inserts one document per call. Each document
// gets its own retries; the first document that still fails stops the loop.
func (p *Pipeline) indexDocuments(ctx context.Context, docs []*entity.NewsDocument) (int, error) {
	policy := p.policy
	for i, doc := range docs {
		entry := &entity.VectorEntry{
			Id:      uuid.New(),
			Content: schema.EncodeDocument(doc.Headline, doc.Summary, doc.Ticker),
			Metadata: map[string]interface{}{
				entity.MetadataSource: doc.Url,
				entity.MetadataTicker: doc.Ticker,
			},
		}

		policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			p.logger.Warn("INGESTION", "Indexing failed, retrying", map[string]interface{}{
				"url":     doc.Url,
				"attempt": attempt,
				"error":   err.Error(),
			})
		}

		err := policy.Do(ctx, func(ctx context.Context) error {
			res, err := p.embedder.Generate(ctx, entry.Content, embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed document: %w", err)
			}
			entry.Embedding = res.Embedding.Values
			return p.index.Insert(ctx, entry)
		})
		if err != nil {
			return i, apperror.VectorStore("index document", fmt.Errorf("%s: %w", doc.Url, err))
		}
	}
	return len(docs), nil
}

// toDocument stamps an article with its ticker and calendar date. Articles
// without a related symbol keep the ticker they were requested for.
func toDocument(a news.Article, requested string) *entity.NewsDocument {
	ticker := strings.TrimSpace(a.Related)
	if ticker == "" {
		ticker = requested
	}

	var image *string
	if a.Image != "" {
		img := a.Image
		image = &img
	}

	return &entity.NewsDocument{
		ExternalId: a.ID,
		Category:   a.Category,
		Datetime:   a.Datetime,
		Headline:   a.Headline,
		Image:      image,
		Related:    a.Related,
		Source:     a.Source,
		Summary:    a.Summary,
		Url:        a.URL,
		Ticker:     ticker,
		Date:       time.Unix(a.Datetime, 0).UTC().Format(dateLayout),
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
