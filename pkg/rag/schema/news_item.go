package schema

import "time"

// NewsItem is a retrieved news document as seen by ranking, prompting and
// the caller.
type NewsItem struct {
	Headline       string     `json:"headline"`
	Summary        string     `json:"summary"`
	Ticker         string     `json:"ticker"`
	Source         string     `json:"source"`
	RelevanceScore float64    `json:"relevance_score"`
	Date           string     `json:"date,omitempty"`
	Datetime       *time.Time `json:"-"`
}
