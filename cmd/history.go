package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gvilla/kbase/internal/db"
	"github.com/gvilla/kbase/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent questions and answers",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 10, "maximum number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		fmt.Println("History is disabled (history_db is empty).")
		return nil
	}

	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history database: %w", err)
	}
	defer database.Close()

	store := history.NewStore(database)
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history yet. Ask a question with `kbase ask`.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("[%s] %s\n", e.AskedAt.Format("2006-01-02 15:04"), e.Question)
		fmt.Printf("  %s\n", firstLine(e.Answer))
		if len(e.Sources) > 0 {
			files := make([]string, len(e.Sources))
			for i, s := range e.Sources {
				files[i] = s.File
			}
			fmt.Printf("  Sources: %s (%d chunks)\n", strings.Join(files, ", "), e.NumChunksUsed)
		}
		fmt.Println()
	}

	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
