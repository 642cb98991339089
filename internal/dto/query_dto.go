package dto

import "finance-rag-be/pkg/rag/schema"

type QueryRequest struct {
	Query         string `json:"query"`
	Model         string `json:"model" validate:"omitempty,max=100"`
	IncludeNews   *bool  `json:"include_news"`
	MaxResults    int    `json:"max_results"`
	AnalysisDepth string `json:"analysis_depth" validate:"omitempty,oneof=Quick Standard Detailed"`
}

// QueryResponse always carries all seven keys.
type QueryResponse struct {
	Summary          string            `json:"summary"`
	KeyInsights      []string          `json:"key_insights"`
	MentionedTickers []string          `json:"mentioned_tickers"`
	Sentiment        schema.Sentiment  `json:"sentiment"`
	ConfidenceScore  float64           `json:"confidence_score"`
	RelatedNews      []schema.NewsItem `json:"related_news"`
	Sources          []string          `json:"sources"`
}
