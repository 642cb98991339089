// Command ingest runs news ingestion and index backfills from the shell.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finance-rag-be/internal/bootstrap"
	"finance-rag-be/internal/config"
	"finance-rag-be/internal/dto"
	"finance-rag-be/pkg/database"
	"finance-rag-be/pkg/news"

	"github.com/spf13/cobra"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch company news into the document store and vector index",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		return nil
	},
}

func init() {
	runCmd.Flags().String("tickers", "", "comma separated tickers (default: DEFAULT_TICKERS)")
	runCmd.Flags().String("start", "", "start date YYYY-MM-DD")
	runCmd.Flags().String("end", "", "end date YYYY-MM-DD (default: today)")
	runCmd.Flags().Bool("sp500", false, "add every S&P 500 constituent")

	backfillCmd.Flags().Int("limit", 500, "maximum documents to index")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(backfillCmd)
	rootCmd.AddCommand(sp500Cmd)
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest news for a ticker list and date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		tickers, _ := cmd.Flags().GetString("tickers")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		sp500, _ := cmd.Flags().GetBool("sp500")

		req := &dto.IngestRequest{StartDate: start, EndDate: end, UseSP500: sp500}
		if tickers != "" {
			req.Tickers = strings.Split(tickers, ",")
		}

		return withContainer(func(ctx context.Context, c *bootstrap.Container) error {
			res, err := c.IngestionService.Ingest(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

// --- Backfill Command ---

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Index stored documents that have no vector entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withContainer(func(ctx context.Context, c *bootstrap.Container) error {
			res, err := c.IngestionService.Backfill(ctx, &dto.BackfillRequest{Limit: limit})
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

// --- S&P 500 Command ---

var sp500Cmd = &cobra.Command{
	Use:   "sp500",
	Short: "Print the current S&P 500 ticker list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		tickers, err := news.FetchSP500Tickers(ctx, http.DefaultClient, cfg.News.SP500URL)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(tickers, ","))
		fmt.Fprintf(os.Stderr, "%d tickers\n", len(tickers))
		return nil
	},
}

func withContainer(fn func(ctx context.Context, c *bootstrap.Container) error) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	c, err := bootstrap.NewContainer(ctx, db, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
