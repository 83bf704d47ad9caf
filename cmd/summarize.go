package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	sumOutputPath string
	sumJSON       bool
)

var summarizeCmd = &cobra.Command{
	Use:     "summarize <file>",
	Aliases: []string{"summary"},
	Short:   "Summarize a CSV/TSV/XLSX file: schema, statistics and insights",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		t, err := loadTable(path)
		if err != nil {
			return err
		}
		body, err := renderSummary(analysis.Summarize(t), filepath.Base(path), sumJSON)
		if err != nil {
			return err
		}
		if sumOutputPath != "" {
			if err := os.WriteFile(sumOutputPath, body, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			printSuccess("Wrote summary to %s", sumOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func renderSummary(s *analysis.DatasetSummary, name string, asJSON bool) ([]byte, error) {
	if asJSON {
		return utils.PrettyJSON(s)
	}
	return []byte(s.Markdown(name)), nil
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&sumOutputPath, "output", "o", "", "optional path to write the summary")
	summarizeCmd.Flags().BoolVar(&sumJSON, "json", false, "emit JSON instead of Markdown")
}
