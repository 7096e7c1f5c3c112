package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "molscope",
	Short: "Interactive visualization of molecular and materials datasets",
	Long: `Molscope serves an interactive viewer for structure-property datasets:
a property scatter plot, a 3D structure view, a frame slider and a
property table, all kept in sync. Datasets are JSON files pairing
structures with property columns, optionally gzip-compressed.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".molscope.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
