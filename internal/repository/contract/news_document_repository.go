package contract

import (
	"context"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/repository/specification"
)

type NewsDocumentRepository interface {
	CreateBulk(ctx context.Context, docs []*entity.NewsDocument) error
	// ExistingURLs returns the subset of urls already stored.
	ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NewsDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NewsDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindUnindexed returns stored documents that have no vector entry yet.
	FindUnindexed(ctx context.Context, limit int) ([]*entity.NewsDocument, error)
}
