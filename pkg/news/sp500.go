package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"finance-rag-be/pkg/apperror"

	"github.com/PuerkitoBio/goquery"
)

const DefaultSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// FetchSP500Tickers scrapes the constituents table and returns the symbol
// column.
func FetchSP500Tickers(ctx context.Context, client *http.Client, pageURL string) ([]string, error) {
	if pageURL == "" {
		pageURL = DefaultSP500URL
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperror.ExternalData("fetch sp500 list", err)
	}
	req.Header.Set("User-Agent", "finance-rag-be/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.ExternalData("fetch sp500 list", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.ExternalData("fetch sp500 list", fmt.Errorf("status %d", resp.StatusCode))
	}

	tickers, err := parseSP500(resp.Body)
	if err != nil {
		return nil, apperror.ExternalData("parse sp500 list", err)
	}
	return tickers, nil
}

// parseSP500 reads the first cell of every data row of the first table.
func parseSP500(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("no table found")
	}

	var tickers []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}
		if symbol := strings.TrimSpace(cell.Text()); symbol != "" {
			tickers = append(tickers, symbol)
		}
	})

	if len(tickers) == 0 {
		return nil, fmt.Errorf("table has no symbols")
	}
	return tickers, nil
}
