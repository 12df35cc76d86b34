package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the configured demo questions against the knowledge base",
	Long:  `Asks each demo question from the config in order and prints the answers with citations. Useful for smoke-testing a freshly built index.`,
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	questions := cfg.DemoQuestions
	if len(questions) == 0 {
		fmt.Println("No demo questions configured.")
		return nil
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

	hist := openHistory(cfg)

	for i, question := range questions {
		fmt.Printf("[%d/%d] %s\n\n", i+1, len(questions), question)

		result, err := engine.Ask(ctx, question, cfg.TopK)
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}

		if hist != nil {
			if _, err := hist.Record(ctx, result); err != nil {
				log.WithError(err).Warn("could not record ask history")
			}
		}

		printResult(result)
		fmt.Println()
	}

	return nil
}
