package cmd

import (
	"github.com/spf13/cobra"

	"github.com/molscope/molscope/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize molscope configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure molscope and generates a config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
