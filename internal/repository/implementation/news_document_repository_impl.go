package implementation

import (
	"context"
	"errors"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/mapper"
	"finance-rag-be/internal/model"
	"finance-rag-be/internal/repository/contract"
	"finance-rag-be/internal/repository/specification"

	"gorm.io/gorm"
)

// Postgres caps bind parameters per statement; url lookups are chunked.
const urlLookupChunk = 1000

type NewsDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NewsDocumentMapper
}

func NewNewsDocumentRepository(db *gorm.DB) contract.NewsDocumentRepository {
	return &NewsDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewNewsDocumentMapper(),
	}
}

func (r *NewsDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NewsDocumentRepositoryImpl) CreateBulk(ctx context.Context, docs []*entity.NewsDocument) error {
	if len(docs) == 0 {
		return nil
	}

	models := r.mapper.ToModels(docs)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 200).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*docs[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *NewsDocumentRepositoryImpl) ExistingURLs(ctx context.Context, urls []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	for start := 0; start < len(urls); start += urlLookupChunk {
		end := start + urlLookupChunk
		if end > len(urls) {
			end = len(urls)
		}

		var found []string
		err := r.db.WithContext(ctx).
			Model(&model.NewsDocument{}).
			Where("url IN ?", urls[start:end]).
			Pluck("url", &found).Error
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			existing[u] = struct{}{}
		}
	}

	return existing, nil
}

func (r *NewsDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.NewsDocument, error) {
	var m model.NewsDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NewsDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NewsDocument, error) {
	var models []*model.NewsDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NewsDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.NewsDocument{}).Count(&count).Error
	return count, err
}

func (r *NewsDocumentRepositoryImpl) FindUnindexed(ctx context.Context, limit int) ([]*entity.NewsDocument, error) {
	if limit <= 0 {
		limit = 100
	}

	var models []*model.NewsDocument
	err := r.db.WithContext(ctx).
		Table("news_documents").
		Select("news_documents.*").
		Joins("LEFT JOIN vector_entries ON vector_entries.source_url = news_documents.url").
		Where("vector_entries.id IS NULL").
		Order("news_documents.created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
