package schema

import (
	"fmt"
	"strings"
)

const (
	NoHeadline    = "No headline available"
	NoSummary     = "No summary available"
	UnknownSource = "Unknown"
)

// EncodeDocument renders the text that is embedded and stored for a news
// document. ParseDocument reads it back.
func EncodeDocument(headline, summary, ticker string) string {
	return fmt.Sprintf("Headline: %s Summary: %s Ticker: %s", headline, summary, ticker)
}

// ParseDocument extracts headline and summary from EncodeDocument output.
// Missing parts come back as NoHeadline / NoSummary.
func ParseDocument(content string) (headline, summary string) {
	if strings.Contains(content, "Headline:") {
		parts := strings.SplitN(content, "Summary:", 2)
		if len(parts) == 2 {
			headline = strings.TrimSpace(strings.Replace(parts[0], "Headline:", "", 1))
			summary = strings.TrimSpace(strings.SplitN(parts[1], "Ticker:", 2)[0])
		}
	}

	if headline == "" {
		headline = NoHeadline
	}
	if summary == "" {
		summary = NoSummary
	}
	return headline, summary
}
