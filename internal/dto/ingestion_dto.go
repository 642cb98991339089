package dto

import "finance-rag-be/pkg/ingestion"

type IngestRequest struct {
	Tickers   []string `json:"tickers" validate:"omitempty,max=600,dive,required,max=10"`
	StartDate string   `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	UseSP500  bool     `json:"use_sp500"`
}

type IngestResponse struct {
	JobId     string            `json:"job_id"`
	Status    string            `json:"status"`
	Tickers   []string          `json:"tickers"`
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Report    *ingestion.Report `json:"report,omitempty"`
}

type BackfillRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=10000"`
}

type BackfillResponse struct {
	Indexed int `json:"indexed"`
}

// IngestJobMessage is the payload of an ingestion job on the internal bus.
type IngestJobMessage struct {
	JobId     string   `json:"job_id"`
	Tickers   []string `json:"tickers"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}
