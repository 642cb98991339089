package rank

import (
	"sort"
	"strings"

	"finance-rag-be/pkg/rag/schema"
)

const (
	tickerWeight   = 0.5
	headlineWeight = 0.1
	summaryWeight  = 0.05
	recencyWeight  = 0.0
)

// Rank scores every item against the query and extracted tickers and returns
// a new slice sorted by descending score. Items with equal scores keep their
// input order. The input slice is not modified.
func Rank(items []schema.NewsItem, query string, tickers []string) []schema.NewsItem {
	if len(items) == 0 {
		return []schema.NewsItem{}
	}

	queryWords := wordSet(query)
	tickerSet := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		tickerSet[t] = struct{}{}
	}

	ranked := make([]schema.NewsItem, len(items))
	copy(ranked, items)
	for i := range ranked {
		ranked[i].RelevanceScore = Score(ranked[i], queryWords, tickerSet)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	return ranked
}

// Score computes the relevance of a single item. queryWords must come from
// wordSet.
func Score(item schema.NewsItem, queryWords map[string]struct{}, tickers map[string]struct{}) float64 {
	score := 0.0

	if _, ok := tickers[strings.ToUpper(item.Ticker)]; ok {
		score += tickerWeight
	}

	score += float64(overlap(queryWords, wordSet(item.Headline))) * headlineWeight
	score += float64(overlap(queryWords, wordSet(item.Summary))) * summaryWeight

	if item.Datetime != nil {
		// recency is accepted but not weighted yet
		score += recencyWeight
	}

	return score
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
