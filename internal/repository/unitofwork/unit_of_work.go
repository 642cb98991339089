package unitofwork

import (
	"context"

	"finance-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NewsDocumentRepository() contract.NewsDocumentRepository
	VectorEntryRepository() contract.VectorEntryRepository
}
