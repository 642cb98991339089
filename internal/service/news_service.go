package service

import (
	"context"
	"strings"

	"finance-rag-be/internal/dto"
	"finance-rag-be/internal/entity"
	"finance-rag-be/internal/repository/specification"
	"finance-rag-be/internal/repository/unitofwork"
)

type INewsService interface {
	List(ctx context.Context, req *dto.ListNewsRequest) (*dto.ListNewsResponse, error)
}

type newsService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewNewsService(uowFactory unitofwork.RepositoryFactory) INewsService {
	return &newsService{uowFactory: uowFactory}
}

func (s *newsService) List(ctx context.Context, req *dto.ListNewsRequest) (*dto.ListNewsResponse, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var filters []specification.Specification
	if t := strings.ToUpper(strings.TrimSpace(req.Ticker)); t != "" {
		filters = append(filters, specification.ByTicker{Ticker: t})
	}
	if req.DateFrom != "" || req.DateTo != "" {
		filters = append(filters, specification.PublishedBetween{From: req.DateFrom, To: req.DateTo})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.NewsDocumentRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "datetime", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	docs, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.NewsDocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, toNewsDocumentResponse(d))
	}

	return &dto.ListNewsResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func toNewsDocumentResponse(d *entity.NewsDocument) *dto.NewsDocumentResponse {
	return &dto.NewsDocumentResponse{
		Id:        d.Id,
		Headline:  d.Headline,
		Summary:   d.Summary,
		Source:    d.Source,
		Url:       d.Url,
		Ticker:    d.Ticker,
		Date:      d.Date,
		Image:     d.Image,
		CreatedAt: d.CreatedAt,
	}
}
