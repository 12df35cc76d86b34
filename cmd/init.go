package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gvilla/kbase/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kbase configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure kbase and writes a .kbase.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
