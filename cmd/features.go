package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	featJSON   bool
	featMatrix bool
)

var featuresCmd = &cobra.Command{
	Use:   "features <file>",
	Short: "Classify columns, find strong correlations and suggest feature work",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args[0])
		if err != nil {
			return err
		}
		rep := analyzer().ExtractFeatures(t)
		w := cmd.OutOrStdout()
		if featJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		if rep.DateAmbiguous {
			printWarning("several date columns found; using %s (set --date-column to choose)", rep.DateColumn)
		}
		fmt.Fprint(w, rep.Markdown(featMatrix))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
	featuresCmd.Flags().BoolVar(&featJSON, "json", false, "emit JSON instead of Markdown")
	featuresCmd.Flags().BoolVar(&featMatrix, "matrix", false, "include the full correlation matrix")
}
