package ticker

import (
	"regexp"
	"sort"
	"strings"
)

type QueryType string

const (
	QueryTypeStockSpecific        QueryType = "stock_specific"
	QueryTypeMultiStockComparison QueryType = "multi_stock_comparison"
	QueryTypeMarketGeneral        QueryType = "market_general"
	QueryTypeNewsRequest          QueryType = "news_request"
	QueryTypeAnalysisRequest      QueryType = "analysis_request"
	QueryTypeInvestmentAdvice     QueryType = "investment_advice"
	QueryTypeGeneralFinancial     QueryType = "general_financial"
)

var (
	tokenPattern  = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
	dollarPattern = regexp.MustCompile(`\$[A-Z]{1,5}\b`)
)

// Extraction is the result of reading tickers and intent out of a query.
type Extraction struct {
	Tickers    []string  `json:"tickers"`
	Confidence float64   `json:"confidence"`
	QueryType  QueryType `json:"query_type"`
}

// Extract finds ticker symbols in free text, classifies the query and scores
// how confident the extraction is.
//
// Any bare 1-5 letter token that is a known symbol counts, so ordinary words
// colliding with a symbol ("V", "MA", "CAT") are matched too. Tickers are
// returned sorted.
func Extract(query string) Extraction {
	upper := strings.ToUpper(query)
	found := make(map[string]struct{})

	for _, token := range tokenPattern.FindAllString(upper, -1) {
		if IsKnown(token) {
			found[token] = struct{}{}
		}
	}

	for _, c := range companyTickers {
		if strings.Contains(upper, c.name) {
			found[c.symbol] = struct{}{}
		}
	}

	tickers := make([]string, 0, len(found))
	for symbol := range found {
		tickers = append(tickers, symbol)
	}
	sort.Strings(tickers)

	return Extraction{
		Tickers:    tickers,
		Confidence: confidence(query, len(tickers)),
		QueryType:  classify(query, len(tickers)),
	}
}

func classify(query string, tickerCount int) QueryType {
	switch {
	case tickerCount == 1:
		return QueryTypeStockSpecific
	case tickerCount > 1:
		return QueryTypeMultiStockComparison
	}

	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, marketTerms):
		return QueryTypeMarketGeneral
	case containsAny(lower, newsTerms):
		return QueryTypeNewsRequest
	case containsAny(lower, analysisTerms):
		return QueryTypeAnalysisRequest
	case containsAny(lower, investmentTerms):
		return QueryTypeInvestmentAdvice
	default:
		return QueryTypeGeneralFinancial
	}
}

func confidence(query string, tickerCount int) float64 {
	score := 0.0

	if tickerCount > 0 {
		score += 0.4
		if tickerCount > 1 {
			score += 0.2
		}
	}

	lower := strings.ToLower(query)
	hits := 0
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	score += min(float64(hits)*0.1, 0.3)

	// $AAPL style mentions, case-sensitive on the original text
	if dollarPattern.MatchString(query) {
		score += 0.2
	}

	return min(score, 1.0)
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
