package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/loader"
	"github.com/KaramelBytes/datalens-cli/internal/logger"
	"github.com/KaramelBytes/datalens-cli/internal/table"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string
	// Loader flags shared by every command that reads a file
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagSheetName  string
	flagSheetIndex int
	flagMaxRows    int
	flagNoDates    bool
	flagDateColumn string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "datalens",
	Short: "DataLens CLI: clean, summarize and profile tabular data",
	Long: `DataLens loads CSV, TSV and XLSX files, cleans them with a fixed pipeline
(duplicates, empty columns, missing values, single-value columns, outliers),
and reports descriptive statistics, insights and feature hints. It also serves
the same engine over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("Error: %v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.datalens/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&logFormat, "log-format", "", "log format: text | json (overrides config)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|' (by extension if omitted)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	pf.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	pf.IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	pf.IntVar(&flagMaxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
	pf.BoolVar(&flagNoDates, "no-dates", false, "keep date-like text columns as categorical when loading")
	pf.StringVar(&flagDateColumn, "date-column", "", "preferred date column for feature analysis")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		printWarning("failed to load config: %v", err)
		return
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	format := cfg.LogFormat
	if rootCmd.PersistentFlags().Changed("log-format") {
		format = logFormat
	}
	logger.Setup(logger.Config{Level: level, Format: format, Output: os.Stderr})
}

// effectiveConfig returns the loaded configuration, loading it on demand.
func effectiveConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// loaderOptions translates the global loader flags.
func loaderOptions() (loader.Options, error) {
	opt := loader.DefaultOptions()
	opt.SheetName = flagSheetName
	opt.SheetIndex = flagSheetIndex
	opt.MaxRows = flagMaxRows
	opt.Infer.ParseDates = !flagNoDates
	switch flagDelimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", flagDelimiter)
	}
	switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
	case ",", "comma":
		opt.Infer.DecimalSeparator = ','
	case ".", "dot":
		opt.Infer.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", flagDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(flagThousands)) {
	case ",":
		opt.Infer.ThousandsSeparator = ','
	case ".":
		opt.Infer.ThousandsSeparator = '.'
	case "space", " ":
		opt.Infer.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", flagThousands)
	}
	return opt, nil
}

// loadTable reads path with the global loader flags.
func loadTable(path string) (*table.Table, error) {
	opt, err := loaderOptions()
	if err != nil {
		return nil, err
	}
	return loader.ReadFile(path, opt)
}

func analyzer() analysis.Analyzer {
	return analysis.Analyzer{Classifier: table.Classifier{PreferredDate: flagDateColumn}}
}
