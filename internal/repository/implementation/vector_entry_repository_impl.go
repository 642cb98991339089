package implementation

import (
	"context"

	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/mapper"
	"finance-rag-be/internal/model"
	"finance-rag-be/internal/repository/contract"
	"finance-rag-be/internal/repository/specification"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type VectorEntryRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VectorEntryMapper
}

func NewVectorEntryRepository(db *gorm.DB) contract.VectorEntryRepository {
	return &VectorEntryRepositoryImpl{
		db:     db,
		mapper: mapper.NewVectorEntryMapper(),
	}
}

func (r *VectorEntryRepositoryImpl) Insert(ctx context.Context, entry *entity.VectorEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *VectorEntryRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredVectorEntry, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	type result struct {
		model.VectorEntry
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("vector_entries").
		Select("vector_entries.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Order(gorm.Expr("embedding <=> ?", queryVector)).
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredVectorEntry, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredVectorEntry{
			Entry:      r.mapper.ToEntity(&res.VectorEntry),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

func (r *VectorEntryRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	err := query.Model(&model.VectorEntry{}).Count(&count).Error
	return count, err
}
