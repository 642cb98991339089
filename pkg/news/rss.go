package news

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"finance-rag-be/internal/pkg/logger"
	"finance-rag-be/pkg/apperror"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

const DefaultRSSURLTemplate = "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US"

// RSSClient reads a per-ticker RSS feed and keeps the items published on
// the requested day. Feeds only carry recent items, so older days come back
// empty.
type RSSClient struct {
	urlTemplate string
	parser      *gofeed.Parser
	logger      logger.ILogger
}

func NewRSSClient(urlTemplate string, log logger.ILogger) *RSSClient {
	if urlTemplate == "" {
		urlTemplate = DefaultRSSURLTemplate
	}
	return &RSSClient{
		urlTemplate: urlTemplate,
		parser:      gofeed.NewParser(),
		logger:      log,
	}
}

func (c *RSSClient) FetchCompanyNews(ctx context.Context, ticker string, date time.Time) ([]Article, error) {
	feedURL := fmt.Sprintf(c.urlTemplate, ticker)

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, apperror.ExternalData("parse rss feed", fmt.Errorf("%s: %w", ticker, err))
	}

	return articlesFromFeed(feed, ticker, date), nil
}

func articlesFromFeed(feed *gofeed.Feed, ticker string, date time.Time) []Article {
	day := date.UTC().Format(dateLayout)
	articles := make([]Article, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item.PublishedParsed == nil || item.Link == "" {
			continue
		}
		published := item.PublishedParsed.UTC()
		if published.Format(dateLayout) != day {
			continue
		}

		articles = append(articles, Article{
			ID:       urlID(item.Link),
			Category: "company",
			Datetime: published.Unix(),
			Headline: strings.TrimSpace(item.Title),
			Related:  ticker,
			Source:   feed.Title,
			Summary:  cleanHTML(item.Description),
			URL:      item.Link,
		})
	}
	return articles
}

// urlID derives a stable positive id for feeds that carry none.
func urlID(link string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(link))
	return int64(h.Sum64() >> 1)
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
