package unitofwork

import (
	"context"

	"finance-rag-be/internal/entity"
)

// DocumentStore is the news document store the ingestion pipeline writes to.
// CreateInBatches can split one bulk insert over several statements, so every
// bulk insert runs in its own transaction and a failed batch leaves no rows.
type DocumentStore struct {
	factory RepositoryFactory
}

func NewDocumentStore(factory RepositoryFactory) *DocumentStore {
	return &DocumentStore{factory: factory}
}

func (s *DocumentStore) CreateBulk(ctx context.Context, docs []*entity.NewsDocument) error {
	if len(docs) == 0 {
		return nil
	}

	uow := s.factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NewsDocumentRepository().CreateBulk(ctx, docs); err != nil {
		return err
	}
	return uow.Commit()
}

func (s *DocumentStore) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	return s.factory.NewUnitOfWork(ctx).NewsDocumentRepository().ExistingURLs(ctx, urls)
}

func (s *DocumentStore) FindUnindexed(ctx context.Context, limit int) ([]*entity.NewsDocument, error) {
	return s.factory.NewUnitOfWork(ctx).NewsDocumentRepository().FindUnindexed(ctx, limit)
}
