package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/japaniel/tatoebando/pkg/db"
	"github.com/japaniel/tatoebando/pkg/harvest"
	"github.com/japaniel/tatoebando/pkg/reading"
)

var (
	urlFlag     string
	historyFlag string
	dryRunFlag  bool
	workersFlag int
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Draft phrases from a Japanese web article",
	Long: `Fetch an article, split it into sentences and add each new sentence to
the phrase file with a generated reading, keywords and formality. Translations
and levels are left for you to fill in. Run POST /api/reload (or serve with
--watch) to publish the result.`,
	Args: cobra.NoArgs,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().StringVar(&urlFlag, "url", "", "Article URL to harvest (required)")
	harvestCmd.Flags().StringVar(&phrasesFlag, "phrases", "phrases.json", "Phrase JSON file to extend (env TATOEBANDO_PHRASES)")
	harvestCmd.Flags().StringVar(&historyFlag, "history", "harvest.db", "SQLite harvest history, empty to disable (env TATOEBANDO_HISTORY)")
	harvestCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Print drafts as JSON instead of writing them")
	harvestCmd.Flags().IntVar(&workersFlag, "workers", 4, "Sentences analyzed in parallel")
	harvestCmd.MarkFlagRequired("url")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("phrases") {
		cfg.PhrasesFile = phrasesFlag
	}
	if cmd.Flags().Changed("history") {
		cfg.HistoryDB = historyFlag
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer, err := reading.NewAnalyzer()
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	h := harvest.New(analyzer, logger)
	h.Workers = workersFlag

	out := cmd.OutOrStdout()

	if dryRunFlag {
		article, err := h.Fetch(ctx, urlFlag)
		if err != nil {
			return err
		}
		drafts, err := h.Draft(ctx, article.Text)
		if err != nil {
			return err
		}
		data, err := harvest.Encode(drafts)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	var hist harvest.History
	if cfg.HistoryDB != "" {
		conn, err := db.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history %s: %w", cfg.HistoryDB, err)
		}
		defer conn.Close()
		hist = harvest.NewSQLHistory(conn)
	}

	report, err := h.Into(ctx, urlFlag, cfg.PhrasesFile, hist)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Title: %s\n", report.Article.Title)
	fmt.Fprintf(out, "Drafted %d sentences: %d added, %d already known.\n",
		report.Drafted, len(report.Merge.Added), report.Merge.Skipped)
	fmt.Fprintf(out, "Harvest complete. %s now holds %d phrases.\n", cfg.PhrasesFile, report.Merge.Total)
	return nil
}
