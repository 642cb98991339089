package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/internal/repository/contract"
	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/embedding"
	"finance-rag-be/pkg/rag/schema"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultResults = 5
	MaxResults     = 20
)

// Index is the part of the vector index the retriever needs.
type Index interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredVectorEntry, error)
}

// Retriever embeds a query and returns its nearest neighbours from the index.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	index    Index
	cache    *gocache.Cache
	logger   logger.ILogger
}

// NewRetriever caches query vectors for cacheTTL; cacheTTL <= 0 disables
// caching.
func NewRetriever(embedder embedding.EmbeddingProvider, index Index, cacheTTL time.Duration, log logger.ILogger) *Retriever {
	r := &Retriever{
		embedder: embedder,
		index:    index,
		logger:   log,
	}
	if cacheTTL > 0 {
		r.cache = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return r
}

// ClampResults bounds a caller-supplied result count to [1, MaxResults].
// Zero or negative means DefaultResults.
func ClampResults(n int) int {
	if n <= 0 {
		return DefaultResults
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}

// Search returns up to n hits ordered by similarity. Every failure is a
// vector store error.
func (r *Retriever) Search(ctx context.Context, query string, n int) ([]*contract.ScoredVectorEntry, error) {
	n = ClampResults(n)

	vector, err := r.queryVector(ctx, query)
	if err != nil {
		return nil, apperror.VectorStore("embed query", err)
	}

	hits, err := r.index.SearchSimilar(ctx, vector, n)
	if err != nil {
		return nil, apperror.VectorStore("similarity search", err)
	}

	r.logger.Debug("RETRIEVAL", "Similarity search completed", map[string]interface{}{
		"requested": n,
		"returned":  len(hits),
	})
	return hits, nil
}

// SearchNews is Search followed by ParseNewsItem on every hit.
func (r *Retriever) SearchNews(ctx context.Context, query string, n int) ([]schema.NewsItem, error) {
	hits, err := r.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}

	items := make([]schema.NewsItem, 0, len(hits))
	for _, hit := range hits {
		items = append(items, ParseNewsItem(hit))
	}
	return items, nil
}

// queryVector caches on the trimmed query and embeds that same text, so a
// cached vector always belongs to its key. Case is kept: embeddings are
// case sensitive.
func (r *Retriever) queryVector(ctx context.Context, query string) ([]float32, error) {
	key := strings.TrimSpace(query)
	if r.cache != nil {
		if v, ok := r.cache.Get(key); ok {
			return v.([]float32), nil
		}
	}

	res, err := r.embedder.Generate(ctx, key, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	if r.cache != nil {
		r.cache.SetDefault(key, res.Embedding.Values)
	}
	return res.Embedding.Values, nil
}

// ParseNewsItem turns an index hit into a NewsItem. The similarity is kept
// as the initial relevance score until ranking replaces it.
func ParseNewsItem(hit *contract.ScoredVectorEntry) schema.NewsItem {
	if hit == nil || hit.Entry == nil {
		return schema.NewsItem{Headline: schema.NoHeadline, Summary: schema.NoSummary, Source: schema.UnknownSource}
	}

	headline, summary := schema.ParseDocument(hit.Entry.Content)
	source := hit.Entry.MetadataString(entity.MetadataSource)
	if source == "" {
		source = schema.UnknownSource
	}

	return schema.NewsItem{
		Headline:       headline,
		Summary:        summary,
		Ticker:         hit.Entry.MetadataString(entity.MetadataTicker),
		Source:         source,
		RelevanceScore: hit.Similarity,
	}
}
