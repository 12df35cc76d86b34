package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-answering session",
	Long:  `Starts an interactive loop that answers questions against the knowledge base until you type exit, quit, or q.`,
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
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

	fmt.Printf("Knowledge base ready (%d chunks indexed). Type a question, or exit to quit.\n\n", index.Count())

	for {
		prompt := promptui.Prompt{
			Label:     "Question",
			AllowEdit: true,
		}
		question, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D end the session.
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}

		question = strings.TrimSpace(question)
		switch strings.ToLower(question) {
		case "", "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return nil
		}

		result, err := engine.Ask(ctx, question, cfg.TopK)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}

		if hist != nil {
			if _, err := hist.Record(ctx, result); err != nil {
				log.WithError(err).Warn("could not record ask history")
			}
		}

		fmt.Println()
		printResult(result)
		fmt.Println()
	}
}
