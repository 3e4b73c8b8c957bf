package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/japaniel/tatoebando/pkg/db"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List harvested articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("history") {
			cfg.HistoryDB = historyFlag
		}
		if cfg.HistoryDB == "" {
			return fmt.Errorf("no history database configured")
		}

		conn, err := db.Open(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("failed to open history %s: %w", cfg.HistoryDB, err)
		}
		defer conn.Close()

		list, err := db.ListSources(conn)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No sources harvested yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSENTENCES\tADDED\tTITLE\tURL")
		for _, s := range list {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", s.ID, s.Sentences, s.AddedAt.Format("2006-01-02"), s.Title, s.URL)
		}
		return tw.Flush()
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&historyFlag, "history", "harvest.db", "SQLite harvest history (env TATOEBANDO_HISTORY)")
}
