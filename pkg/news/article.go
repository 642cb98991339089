package news

import (
	"context"
	"time"
)

// Article is one raw company-news item as returned by a news source.
type Article struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// Source fetches company news for one ticker on one calendar day.
type Source interface {
	FetchCompanyNews(ctx context.Context, ticker string, date time.Time) ([]Article, error)
}

const dateLayout = "2006-01-02"
