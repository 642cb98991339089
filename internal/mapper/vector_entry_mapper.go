package mapper

import (
	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VectorEntryMapper struct{}

func NewVectorEntryMapper() *VectorEntryMapper {
	return &VectorEntryMapper{}
}

func (m *VectorEntryMapper) ToEntity(e *model.VectorEntry) *entity.VectorEntry {
	if e == nil {
		return nil
	}
	return &entity.VectorEntry{
		Id:        e.Id,
		Content:   e.Content,
		Metadata:  map[string]interface{}(e.Metadata),
		Embedding: e.Embedding.Slice(),
		CreatedAt: e.CreatedAt,
	}
}

// ToModel copies source and ticker out of the metadata into their own
// indexed columns.
func (m *VectorEntryMapper) ToModel(e *entity.VectorEntry) *model.VectorEntry {
	if e == nil {
		return nil
	}
	return &model.VectorEntry{
		Id:        e.Id,
		Content:   e.Content,
		Metadata:  datatypes.JSONMap(e.Metadata),
		SourceUrl: e.MetadataString(entity.MetadataSource),
		Ticker:    e.MetadataString(entity.MetadataTicker),
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
	}
}
