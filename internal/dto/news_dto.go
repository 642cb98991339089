package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListNewsRequest struct {
	Ticker   string `query:"ticker" validate:"omitempty,max=10"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type NewsDocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Headline  string    `json:"headline"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	Url       string    `json:"url"`
	Ticker    string    `json:"ticker"`
	Date      string    `json:"date"`
	Image     *string   `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListNewsResponse struct {
	Items []*NewsDocumentResponse `json:"items"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
