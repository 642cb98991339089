package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"finance-rag-be/internal/bootstrap"
	"finance-rag-be/internal/config"
	"finance-rag-be/internal/dto"
	"finance-rag-be/pkg/database"
	"finance-rag-be/pkg/rag/schema"
	"finance-rag-be/pkg/validate"

	"github.com/fatih/color"
)

var (
	depth      = flag.String("depth", "Standard", "Analysis depth: Quick, Standard or Detailed")
	maxResults = flag.Int("n", 5, "Number of news documents to retrieve")
	noNews     = flag.Bool("no-news", false, "Omit related news from the output")
)

func main() {
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	c, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer c.Close()

	if flag.NArg() > 0 {
		ask(ctx, c, strings.Join(flag.Args(), " "))
		return
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Println(boldGreen("Finance news assistant"))
	fmt.Println("Ask about stocks or markets. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			return
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "exit" || q == "quit" {
			return
		}
		ask(ctx, c, q)
		if ctx.Err() != nil {
			return
		}
	}
}

func ask(ctx context.Context, c *bootstrap.Container, q string) {
	if err := validate.Query(q); err != nil {
		color.Yellow("%s\n", err)
		return
	}

	include := !*noNews
	res := c.QueryService.ProcessQuery(ctx, &dto.QueryRequest{
		Query:         q,
		IncludeNews:   &include,
		MaxResults:    *maxResults,
		AnalysisDepth: *depth,
	})
	render(res)
}

func render(res *dto.QueryResponse) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Println()
	fmt.Println(res.Summary)
	fmt.Println()

	if len(res.KeyInsights) > 0 {
		fmt.Println(bold("Key insights"))
		for _, in := range res.KeyInsights {
			fmt.Printf("  • %s\n", in)
		}
		fmt.Println()
	}

	fmt.Printf("%s %s   %s %s   %s %.2f\n",
		bold("Tickers:"), cyan(strings.Join(res.MentionedTickers, ", ")),
		bold("Sentiment:"), sentimentColor(res.Sentiment)(string(res.Sentiment)),
		bold("Confidence:"), res.ConfidenceScore)

	if len(res.RelatedNews) > 0 {
		fmt.Println()
		fmt.Println(bold("Related news"))
		for _, n := range res.RelatedNews {
			fmt.Printf("  [%.2f] %s (%s)\n", n.RelevanceScore, n.Headline, n.Source)
		}
	}
	fmt.Println()
}

func sentimentColor(s schema.Sentiment) func(a ...interface{}) string {
	switch s {
	case schema.SentimentPositive:
		return color.New(color.FgGreen).SprintFunc()
	case schema.SentimentNegative:
		return color.New(color.FgRed).SprintFunc()
	default:
		return color.New(color.FgYellow).SprintFunc()
	}
}
