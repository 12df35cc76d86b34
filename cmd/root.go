package cmd

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "kbase",
	Short: "Question answering over a personal document knowledge base",
	Long: `kbase indexes a directory of text and markdown documents into a
semantic vector index and answers natural language questions about
them, citing the source documents it used. It integrates with AI
agents via MCP and can serve the pipeline over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real env vars always win.
		_ = godotenv.Load()

		log.SetLevel(logrus.WarnLevel)
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".kbase.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
