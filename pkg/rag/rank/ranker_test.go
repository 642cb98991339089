package rank

import (
	"testing"
	"time"

	"finance-rag-be/pkg/rag/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got := Rank(nil, "anything", []string{"AAPL"})
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("ticker match outranks equal lexical overlap", func(t *testing.T) {
		items := []schema.NewsItem{
			{Headline: "Earnings beat expectations", Ticker: "MSFT"},
			{Headline: "Earnings beat expectations", Ticker: "AAPL"},
		}

		got := Rank(items, "earnings report", []string{"AAPL"})

		require.Len(t, got, 2)
		assert.Equal(t, "AAPL", got[0].Ticker)
		assert.Greater(t, got[0].RelevanceScore, got[1].RelevanceScore)
	})

	t.Run("score combines ticker headline and summary", func(t *testing.T) {
		items := []schema.NewsItem{{
			Headline: "Apple earnings surge",
			Summary:  "Apple reported record earnings on strong demand",
			Ticker:   "aapl",
		}}

		got := Rank(items, "Apple earnings", []string{"AAPL"})

		// 0.5 ticker + 2 headline words * 0.1 + 2 summary words * 0.05
		assert.InDelta(t, 0.8, got[0].RelevanceScore, 1e-9)
	})

	t.Run("comparison is case insensitive and whitespace tokenized", func(t *testing.T) {
		items := []schema.NewsItem{{Headline: "TESLA Deliveries", Ticker: "TSLA"}}

		got := Rank(items, "tesla deliveries?", nil)

		// "deliveries?" keeps its punctuation, so only "tesla" overlaps
		assert.InDelta(t, 0.1, got[0].RelevanceScore, 1e-9)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		items := []schema.NewsItem{
			{Headline: "first", Ticker: "X"},
			{Headline: "second", Ticker: "Y"},
			{Headline: "third", Ticker: "Z"},
			{Headline: "market rally", Ticker: "W"},
		}

		got := Rank(items, "market", nil)

		assert.Equal(t, []string{"market rally", "first", "second", "third"}, headlines(got))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		items := []schema.NewsItem{
			{Headline: "unrelated", Ticker: "X", RelevanceScore: 0.9},
			{Headline: "apple news", Ticker: "AAPL"},
		}

		_ = Rank(items, "apple", []string{"AAPL"})

		assert.Equal(t, "unrelated", items[0].Headline)
		assert.Equal(t, 0.9, items[0].RelevanceScore)
	})

	t.Run("datetime carries no weight", func(t *testing.T) {
		now := time.Now()
		items := []schema.NewsItem{
			{Headline: "old", Ticker: "X"},
			{Headline: "new", Ticker: "X", Datetime: &now},
		}

		got := Rank(items, "nothing in common", nil)

		assert.Equal(t, []string{"old", "new"}, headlines(got))
		assert.Equal(t, got[0].RelevanceScore, got[1].RelevanceScore)
	})

	t.Run("repeated calls give the same order", func(t *testing.T) {
		items := []schema.NewsItem{
			{Headline: "chip demand", Summary: "nvidia chip demand", Ticker: "NVDA"},
			{Headline: "chip shortage", Ticker: "INTC"},
			{Headline: "retail sales", Ticker: "WMT"},
			{Headline: "chip demand grows", Ticker: "AMD"},
		}

		first := Rank(items, "chip demand", []string{"NVDA"})
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Rank(items, "chip demand", []string{"NVDA"}))
		}
	})
}

func headlines(items []schema.NewsItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Headline
	}
	return out
}
