package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long:  `Retrieves the most relevant document chunks for the question, asks the configured LLM to answer from them, and prints the answer with source citations.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().Int("k", 0, "number of chunks to retrieve (overrides config)")
	askCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	question := args[0]

	k, _ := cmd.Flags().GetInt("k")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if k <= 0 {
		k = cfg.TopK
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	index, err := loadIndex(ctx, cfg, embedder)
	if err != nil {
		return err
	}

	engine, err := createEngine(cfg, index)
	if err != nil {
		return err
	}

	result, err := engine.Ask(ctx, question, k)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if hist := openHistory(cfg); hist != nil {
		if _, err := hist.Record(ctx, result); err != nil {
			log.WithError(err).Warn("could not record ask history")
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}
