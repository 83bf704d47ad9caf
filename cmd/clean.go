package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/cleaning"
	"github.com/KaramelBytes/datalens-cli/internal/loader"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	clOutputPath    string
	clJSON          bool
	clDedupe        bool
	clDropEmpty     bool
	clMissing       string
	clFillValue     string
	clOutliers      bool
	clOutlierMethod string
	clCap           bool
	clZThresh       float64
	clCapLow        float64
	clCapHigh       float64
)

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Run the cleaning pipeline and write the cleaned CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		opt := c.CleaningOptions()
		applyCleaningFlags(cmd, &opt)
		if !cleaning.KnownMissingMethod(opt.Missing.Method) {
			printWarning("unknown missing method %q; missing values are left as is", opt.Missing.Method)
		}

		t, err := loadTable(path)
		if err != nil {
			return err
		}
		out, rep, err := cleaning.Clean(t, opt)
		if err != nil {
			return err
		}

		dest := clOutputPath
		if dest == "" {
			dest = utils.OutputPath(path, "", ".cleaned.csv")
		}
		if err := loader.WriteCSVFile(dest, out); err != nil {
			return fmt.Errorf("write cleaned csv: %w", err)
		}

		w := cmd.OutOrStdout()
		if clJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
		} else {
			fmt.Fprint(w, rep.Markdown())
		}
		printSuccess("Wrote cleaned data to %s", dest)
		return nil
	},
}

// applyCleaningFlags overrides configured options with flags the user set.
func applyCleaningFlags(cmd *cobra.Command, opt *cleaning.Options) {
	f := cmd.Flags()
	if f.Changed("remove-duplicates") {
		opt.RemoveDuplicates = clDedupe
	}
	if f.Changed("remove-empty-cols") {
		opt.RemoveEmptyCols = clDropEmpty
	}
	if f.Changed("missing") {
		opt.Missing = cleaning.MissingStrategy{Method: clMissing}
	}
	if f.Changed("fill-value") {
		opt.Missing.Value = fillValue(clFillValue)
	}
	if f.Changed("remove-outliers") {
		opt.RemoveOutliers = clOutliers
	}
	if f.Changed("outlier-method") {
		opt.OutlierMethod = clOutlierMethod
	}
	if f.Changed("outlier-cap") {
		opt.OutlierCap = clCap
	}
	if f.Changed("z-thresh") {
		opt.OutlierZThresh = clZThresh
	}
	if f.Changed("cap-low") {
		opt.OutlierCapQ.Low = clCapLow
	}
	if f.Changed("cap-high") {
		opt.OutlierCapQ.High = clCapHigh
	}
}

// fillValue keeps numeric constants numeric, as a JSON body would.
func fillValue(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	d := cleaning.DefaultOptions()
	f := cleanCmd.Flags()
	f.StringVarP(&clOutputPath, "output", "o", "", "path of the cleaned CSV (default <name>.cleaned.csv next to the input)")
	f.BoolVar(&clJSON, "json", false, "print the cleaning report as JSON")
	f.BoolVar(&clDedupe, "remove-duplicates", d.RemoveDuplicates, "remove fully duplicated rows")
	f.BoolVar(&clDropEmpty, "remove-empty-cols", d.RemoveEmptyCols, "drop columns with no values")
	f.StringVar(&clMissing, "missing", d.Missing.Method, "missing values: drop|mean|median|mode|constant|ffill|bfill")
	f.StringVar(&clFillValue, "fill-value", "", "value used by --missing constant")
	f.BoolVar(&clOutliers, "remove-outliers", d.RemoveOutliers, "remove rows holding outliers")
	f.StringVar(&clOutlierMethod, "outlier-method", d.OutlierMethod, "outlier rule: iqr|zscore")
	f.BoolVar(&clCap, "outlier-cap", d.OutlierCap, "clip numeric columns to quantile bounds instead of removing rows")
	f.Float64Var(&clZThresh, "z-thresh", d.OutlierZThresh, "z-score threshold for --outlier-method zscore")
	f.Float64Var(&clCapLow, "cap-low", d.OutlierCapQ.Low, "lower quantile for --outlier-cap")
	f.Float64Var(&clCapHigh, "cap-high", d.OutlierCapQ.High, "upper quantile for --outlier-cap")
}
