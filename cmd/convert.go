package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/molscope/molscope/internal/dataset"
	"github.com/molscope/molscope/internal/progress"
)

var (
	convertCutoff   float64
	convertCompress bool
	convertName     string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> [output]",
	Short: "Normalize a dataset file, optionally generating environments",
	Long: `Reads a dataset, checks it, optionally generates one atom-centered
environment per atom using --cutoff, and writes it back out. The output
defaults to the input path; a .json.gz extension or --compress selects
gzip compression.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := input
		if len(args) == 2 {
			output = args[1]
		}
		if convertCompress && !strings.HasSuffix(output, ".json.gz") {
			output = strings.TrimSuffix(output, ".json") + ".json.gz"
		}

		ds, err := dataset.Load(input)
		if err != nil {
			return fmt.Errorf("loading %s: %w", input, err)
		}
		if convertName != "" {
			ds.Meta.Name = convertName
		}

		reporter := progress.NewReporter()
		reporter.Start(len(ds.Structures))
		atoms := 0
		for i, s := range ds.Structures {
			n, err := s.AtomCount()
			if err != nil {
				reporter.Finish()
				return fmt.Errorf("structure %d: %w", i, err)
			}
			atoms += n
			reporter.Update(i+1, fmt.Sprintf("checked structure %d", i))
		}
		reporter.Finish()

		if cmd.Flags().Changed("cutoff") {
			if err := ds.GenerateEnvironments(convertCutoff); err != nil {
				return fmt.Errorf("generating environments: %w", err)
			}
		}

		if err := ds.Check(); err != nil {
			return fmt.Errorf("dataset %s: %w", input, err)
		}

		if err := dataset.Write(output, ds); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}

		fmt.Fprintf(os.Stderr, "wrote %s: %d structures, %d atoms, %d environments\n",
			output, len(ds.Structures), atoms, len(ds.Environments))
		return nil
	},
}

func init() {
	convertCmd.Flags().Float64Var(&convertCutoff, "cutoff", 3.5, "environment cutoff in angstroms")
	convertCmd.Flags().BoolVar(&convertCompress, "compress", false, "gzip the output")
	convertCmd.Flags().StringVar(&convertName, "name", "", "override the dataset name")
	rootCmd.AddCommand(convertCmd)
}
