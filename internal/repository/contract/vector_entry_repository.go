package contract

import (
	"context"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/repository/specification"
)

// ScoredVectorEntry wraps VectorEntry with its similarity score
type ScoredVectorEntry struct {
	Entry      *entity.VectorEntry
	Similarity float64 // 1 - cosine distance
}

type VectorEntryRepository interface {
	// Insert adds exactly one entry.
	Insert(ctx context.Context, entry *entity.VectorEntry) error
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*ScoredVectorEntry, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
