package fallback

import (
	"fmt"

	"finance-rag-be/pkg/apperror"
	"finance-rag-be/pkg/rag/schema"
)

const MarketOutlook = "Unable to provide outlook due to system error"

type message struct {
	summary  string
	insights []string
}

var messages = map[apperror.Kind]message{
	apperror.KindTickerExtraction: {
		summary:  "I had trouble understanding which stocks you're asking about. Please be more specific.",
		insights: []string{"Stock ticker recognition failed", "Try naming the company or its ticker symbol"},
	},
	apperror.KindExternalData: {
		summary:  "I'm currently unable to fetch the latest financial data from external sources. Please try again in a few minutes.",
		insights: []string{"External financial data service is temporarily unavailable"},
	},
	apperror.KindVectorStore: {
		summary: "I'm experiencing issues with my knowledge base. I can provide general information but may not have the latest updates.",
		insights: []string{
			"Knowledge base temporarily unavailable",
			"Consider asking about general financial concepts",
		},
	},
	apperror.KindLLM: {
		summary: "I'm having trouble processing your request right now. Please try rephrasing your question or try again later.",
		insights: []string{
			"Language model temporarily unavailable",
			"Try asking simpler questions",
		},
	},
	apperror.KindPersistence: {
		summary:  "I'm experiencing database connectivity issues. Some features may be limited.",
		insights: []string{"Database connection issues", "Historical data may be unavailable"},
	},
}

// For maps a failure to the canned answer shown to the user. It is the only
// place where error kinds become answer content.
func For(kind apperror.Kind, err error) schema.Answer {
	msg, ok := messages[kind]
	if !ok {
		detail := "unknown error"
		if err != nil {
			detail = err.Error()
		}
		msg = message{
			summary: fmt.Sprintf("I encountered an unexpected error while processing your request: %s", detail),
			insights: []string{
				"Unexpected system error occurred",
				"Please try again or contact support",
			},
		}
	}

	insights := make([]string, len(msg.insights))
	copy(insights, msg.insights)

	return schema.Answer{
		Summary:          msg.summary,
		KeyInsights:      insights,
		TopNews:          []schema.NewsItem{},
		MentionedTickers: []string{},
		Sentiment:        schema.SentimentNeutral,
		ConfidenceScore:  0.0,
		MarketOutlook:    MarketOutlook,
	}
}

// FromError is For(apperror.KindOf(err), err).
func FromError(err error) schema.Answer {
	return For(apperror.KindOf(err), err)
}
