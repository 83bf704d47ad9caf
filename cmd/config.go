package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/datalens-cli/internal/config"
	"github.com/KaramelBytes/datalens-cli/internal/cleaning"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DataLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(w, "listen_addr: %s\n", c.ListenAddr)
		fmt.Fprintf(w, "max_upload_mb: %d\n", c.MaxUploadMB)
		fmt.Fprintf(w, "session_backend: %s\n", c.SessionBackend)
		if c.SessionBackend == "sqlite" {
			fmt.Fprintf(w, "session_db: %s\n", c.SessionDB)
		}
		fmt.Fprintf(w, "preview_rows: %d\n", c.PreviewRows)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(w, "batch_jobs: %d\n", c.BatchJobs)
		fmt.Fprintf(w, "remove_duplicates: %t\n", c.RemoveDuplicates)
		fmt.Fprintf(w, "remove_empty_cols: %t\n", c.RemoveEmptyCols)
		fmt.Fprintf(w, "missing_method: %s\n", c.MissingMethod)
		if c.MissingMethod == cleaning.MissingConstant {
			fmt.Fprintf(w, "missing_value: %q\n", c.MissingValue)
		}
		fmt.Fprintf(w, "remove_outliers: %t\n", c.RemoveOutliers)
		fmt.Fprintf(w, "outlier_method: %s\n", c.OutlierMethod)
		fmt.Fprintf(w, "outlier_cap: %t\n", c.OutlierCap)
		fmt.Fprintf(w, "outlier_z_thresh: %.3f\n", c.OutlierZThresh)
		fmt.Fprintf(w, "outlier_cap_low: %.3f\n", c.OutlierCapLow)
		fmt.Fprintf(w, "outlier_cap_high: %.3f\n", c.OutlierCapHigh)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := effectiveConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.CleaningOptions().Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		printSuccess("Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	var err error
	switch key {
	case "data_dir":
		c.DataDir = val
	case "listen_addr":
		c.ListenAddr = val
	case "max_upload_mb":
		c.MaxUploadMB, err = positiveInt(key, val)
	case "session_backend":
		switch val {
		case "memory", "sqlite":
			c.SessionBackend = val
		default:
			return fmt.Errorf("invalid session_backend: %s (use memory or sqlite)", val)
		}
	case "session_db":
		c.SessionDB = val
	case "preview_rows":
		c.PreviewRows, err = positiveInt(key, val)
	case "log_level":
		c.LogLevel = val
	case "log_format":
		switch val {
		case "text", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	case "batch_jobs":
		c.BatchJobs, err = positiveInt(key, val)
	case "remove_duplicates":
		c.RemoveDuplicates, err = parseBool(key, val)
	case "remove_empty_cols":
		c.RemoveEmptyCols, err = parseBool(key, val)
	case "missing_method":
		if !cleaning.KnownMissingMethod(val) {
			return fmt.Errorf("invalid missing_method: %s", val)
		}
		c.MissingMethod = val
	case "missing_value":
		c.MissingValue = val
	case "remove_outliers":
		c.RemoveOutliers, err = parseBool(key, val)
	case "outlier_method":
		c.OutlierMethod = val
	case "outlier_cap":
		c.OutlierCap, err = parseBool(key, val)
	case "outlier_z_thresh":
		c.OutlierZThresh, err = parseFloat(key, val)
	case "outlier_cap_low":
		c.OutlierCapLow, err = parseFloat(key, val)
	case "outlier_cap_high":
		c.OutlierCapHigh, err = parseFloat(key, val)
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func positiveInt(key, val string) (int, error) {
	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

func parseBool(key, val string) (bool, error) {
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %w", key, err)
	}
	return b, nil
}

func parseFloat(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %w", key, err)
	}
	return f, nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
