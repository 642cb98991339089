package compose

import (
	"fmt"
	"strings"

	"finance-rag-be/pkg/rag/schema"
)

const (
	// NoNews is returned when there is nothing to put in the prompt context.
	NoNews = "No recent news available."

	// MaxItems caps how many ranked items reach the prompt.
	MaxItems = 10
)

// Compose renders ranked news items into the prompt context block. Only the
// first MaxItems are used; fields are not truncated.
func Compose(items []schema.NewsItem) string {
	if len(items) == 0 {
		return NoNews
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}

	parts := make([]string, 0, len(items))
	for i, item := range items {
		parts = append(parts, fmt.Sprintf(
			"%d. %s\n   Summary: %s\n   Ticker: %s\n   Source: %s\n",
			i+1,
			orDefault(item.Headline, "No headline"),
			orDefault(item.Summary, "No summary"),
			orDefault(item.Ticker, "N/A"),
			orDefault(item.Source, "N/A"),
		))
	}
	return strings.Join(parts, "\n")
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
