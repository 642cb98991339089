package mapper

import (
	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/model"
)

type NewsDocumentMapper struct{}

func NewNewsDocumentMapper() *NewsDocumentMapper {
	return &NewsDocumentMapper{}
}

func (m *NewsDocumentMapper) ToEntity(d *model.NewsDocument) *entity.NewsDocument {
	if d == nil {
		return nil
	}
	return &entity.NewsDocument{
		Id:         d.Id,
		ExternalId: d.ExternalId,
		Category:   d.Category,
		Datetime:   d.Datetime,
		Headline:   d.Headline,
		Image:      d.Image,
		Related:    d.Related,
		Source:     d.Source,
		Summary:    d.Summary,
		Url:        d.Url,
		Ticker:     d.Ticker,
		Date:       d.Date,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *NewsDocumentMapper) ToModel(d *entity.NewsDocument) *model.NewsDocument {
	if d == nil {
		return nil
	}
	return &model.NewsDocument{
		Id:         d.Id,
		ExternalId: d.ExternalId,
		Category:   d.Category,
		Datetime:   d.Datetime,
		Headline:   d.Headline,
		Image:      d.Image,
		Related:    d.Related,
		Source:     d.Source,
		Summary:    d.Summary,
		Url:        d.Url,
		Ticker:     d.Ticker,
		Date:       d.Date,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *NewsDocumentMapper) ToEntities(docs []*model.NewsDocument) []*entity.NewsDocument {
	entities := make([]*entity.NewsDocument, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

func (m *NewsDocumentMapper) ToModels(docs []*entity.NewsDocument) []*model.NewsDocument {
	models := make([]*model.NewsDocument, len(docs))
	for i, d := range docs {
		models[i] = m.ToModel(d)
	}
	return models
}
