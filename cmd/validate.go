package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/molscope/molscope/internal/dataset"
)

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check dataset files without serving them",
	Long: `Loads and checks each dataset file. With no arguments, validates every
dataset the config discovers in the data directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			found, err := cfg.DiscoverDatasets()
			if err != nil {
				return fmt.Errorf("discovering datasets: %w", err)
			}
			for _, rel := range found {
				paths = append(paths, filepath.Join(cfg.DataDir, rel))
			}
		}
		if len(paths) == 0 {
			return fmt.Errorf("no dataset files to validate")
		}

		failures := 0
		for _, path := range paths {
			if err := validateOne(path); err != nil {
				color.Red.Printf("FAIL  %s\n", path)
				fmt.Printf("      %v\n", err)
				failures++
			} else {
				color.Green.Printf("OK    %s\n", path)
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d datasets failed validation", failures, len(paths))
		}
		return nil
	},
}

func validateOne(path string) error {
	ds, err := dataset.Load(path)
	if err != nil {
		return err
	}
	return ds.Check()
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
