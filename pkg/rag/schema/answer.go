package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

const (
	MaxKeyInsights = 10
	MaxTopNews     = 5
)

// Answer is the structured response to one financial question.
type Answer struct {
	Summary          string     `json:"summary"`
	KeyInsights      []string   `json:"key_insights"`
	TopNews          []NewsItem `json:"top_news"`
	MentionedTickers []string   `json:"mentioned_tickers"`
	Sentiment        Sentiment  `json:"sentiment"`
	ConfidenceScore  float64    `json:"confidence_score"`
	MarketOutlook    string     `json:"market_outlook,omitempty"`
}

// answerWire mirrors Answer with pointers so that absent fields can be told
// apart from zero values.
type answerWire struct {
	Summary          *string    `json:"summary" validate:"required"`
	KeyInsights      []string   `json:"key_insights" validate:"required,max=10"`
	TopNews          []NewsItem `json:"top_news"`
	MentionedTickers []string   `json:"mentioned_tickers" validate:"required"`
	Sentiment        *string    `json:"sentiment" validate:"required,oneof=positive negative neutral"`
	ConfidenceScore  *float64   `json:"confidence_score" validate:"required,gte=0,lte=1"`
	MarketOutlook    *string    `json:"market_outlook"`
}

var validate = validator.New()

// ParseAnswer decodes a model completion into an Answer. Surrounding
// markdown code fences are tolerated; anything else that does not match the
// schema is an error.
func ParseAnswer(raw string) (*Answer, error) {
	body := stripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("empty completion")
	}

	var wire answerWire
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	if err := validate.Struct(wire); err != nil {
		return nil, fmt.Errorf("answer does not match schema: %w", err)
	}

	ans := &Answer{
		Summary:          *wire.Summary,
		KeyInsights:      wire.KeyInsights,
		TopNews:          wire.TopNews,
		MentionedTickers: wire.MentionedTickers,
		Sentiment:        Sentiment(*wire.Sentiment),
		ConfidenceScore:  *wire.ConfidenceScore,
	}
	if wire.MarketOutlook != nil {
		ans.MarketOutlook = *wire.MarketOutlook
	}
	if ans.TopNews == nil {
		ans.TopNews = []NewsItem{}
	}
	return ans, nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
