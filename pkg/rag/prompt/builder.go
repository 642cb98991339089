package prompt

import (
	"fmt"
	"strings"

	"finance-rag-be/pkg/ticker"
)

type AnalysisDepth string

const (
	DepthQuick    AnalysisDepth = "Quick"
	DepthStandard AnalysisDepth = "Standard"
	DepthDetailed AnalysisDepth = "Detailed"
)

// ParseDepth accepts any casing and falls back to DepthStandard.
func ParseDepth(s string) AnalysisDepth {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quick":
		return DepthQuick
	case "detailed":
		return DepthDetailed
	default:
		return DepthStandard
	}
}

const noTickers = "None specified"

type PromptInput struct {
	Context       string
	QueryType     ticker.QueryType
	Tickers       []string
	AnalysisDepth AnalysisDepth
}

const systemTemplate = `You are an expert financial analyst specializing in stock market analysis and investment insights.
Your task is to provide comprehensive, accurate, and actionable financial analysis based on the latest market data.

Based on the following context from recent financial news and data, provide a structured analysis that includes:
1. A clear, concise summary answering the user's question
2. Key insights and important points (as bullet points)
3. The most relevant news items with their details
4. All stock tickers mentioned in your analysis
5. Overall market sentiment (positive/negative/neutral)
6. Your confidence level in the analysis (0.0 to 1.0)
7. Brief market outlook if relevant

Context from recent financial news:
%s

User's query type: %s
Extracted tickers: %s
Requested depth: %s

%s

Be objective, data-driven, and provide specific examples from the news when possible.
If information is limited, acknowledge this in your confidence score.`

// BuildSystemPrompt renders the system message. The user's question is sent
// separately as the user message.
func BuildSystemPrompt(in PromptInput) string {
	tickers := noTickers
	if len(in.Tickers) > 0 {
		tickers = strings.Join(in.Tickers, ", ")
	}

	return fmt.Sprintf(systemTemplate,
		in.Context,
		in.QueryType,
		tickers,
		depthHint(in.AnalysisDepth),
		FormatInstructions(),
	)
}

func depthHint(d AnalysisDepth) string {
	switch d {
	case DepthQuick:
		return "Quick - keep the summary to two sentences and give at most 3 key insights"
	case DepthDetailed:
		return "Detailed - give a thorough summary and up to 10 key insights"
	default:
		return "Standard - a short paragraph and 3 to 6 key insights"
	}
}

// FormatInstructions describes the JSON object the model must return.
func FormatInstructions() string {
	return `Respond with a single JSON object and nothing else. It must have exactly these fields:
{
  "summary": string,                       // required, answers the question
  "key_insights": [string],                // required, at most 10 items
  "top_news": [                            // optional, most relevant news items
    {"headline": string, "summary": string, "ticker": string, "source": string, "relevance_score": number}
  ],
  "mentioned_tickers": [string],           // required, upper-case stock symbols
  "sentiment": "positive" | "negative" | "neutral",   // required
  "confidence_score": number,              // required, between 0.0 and 1.0
  "market_outlook": string                 // optional
}`
}
