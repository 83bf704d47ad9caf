package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datalens-cli/internal/cleaning"
)

// Global configuration structure.
type Global struct {
	DataDir        string `mapstructure:"data_dir" yaml:"data_dir"`
	ListenAddr     string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB    int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionBackend string `mapstructure:"session_backend" yaml:"session_backend"`
	SessionDB      string `mapstructure:"session_db" yaml:"session_db"`
	PreviewRows    int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string `mapstructure:"log_format" yaml:"log_format"`
	BatchJobs      int    `mapstructure:"batch_jobs" yaml:"batch_jobs"`

	// Cleaning defaults
	RemoveDuplicates bool    `mapstructure:"remove_duplicates" yaml:"remove_duplicates"`
	RemoveEmptyCols  bool    `mapstructure:"remove_empty_cols" yaml:"remove_empty_cols"`
	MissingMethod    string  `mapstructure:"missing_method" yaml:"missing_method"`
	MissingValue     string  `mapstructure:"missing_value" yaml:"missing_value"`
	RemoveOutliers   bool    `mapstructure:"remove_outliers" yaml:"remove_outliers"`
	OutlierMethod    string  `mapstructure:"outlier_method" yaml:"outlier_method"`
	OutlierCap       bool    `mapstructure:"outlier_cap" yaml:"outlier_cap"`
	OutlierZThresh   float64 `mapstructure:"outlier_z_thresh" yaml:"outlier_z_thresh"`
	OutlierCapLow    float64 `mapstructure:"outlier_cap_low" yaml:"outlier_cap_low"`
	OutlierCapHigh   float64 `mapstructure:"outlier_cap_high" yaml:"outlier_cap_high"`
}

// CleaningOptions converts the cleaning defaults into pipeline options.
func (c *Global) CleaningOptions() cleaning.Options {
	opt := cleaning.Options{
		RemoveDuplicates: c.RemoveDuplicates,
		RemoveEmptyCols:  c.RemoveEmptyCols,
		Missing:          cleaning.MissingStrategy{Method: c.MissingMethod},
		RemoveOutliers:   c.RemoveOutliers,
		OutlierMethod:    c.OutlierMethod,
		OutlierCap:       c.OutlierCap,
		OutlierZThresh:   c.OutlierZThresh,
		OutlierCapQ:      cleaning.Quantiles{Low: c.OutlierCapLow, High: c.OutlierCapHigh},
	}
	if c.MissingMethod == cleaning.MissingConstant {
		opt.Missing.Value = c.MissingValue
	}
	return opt
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datalens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datalens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := cleaning.DefaultOptions()
	v.SetDefault("listen_addr", ":5000")
	v.SetDefault("max_upload_mb", 16)
	v.SetDefault("session_backend", "memory")
	v.SetDefault("preview_rows", 10)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("batch_jobs", 4)
	v.SetDefault("remove_duplicates", d.RemoveDuplicates)
	v.SetDefault("remove_empty_cols", d.RemoveEmptyCols)
	v.SetDefault("missing_method", d.Missing.Method)
	v.SetDefault("missing_value", "")
	v.SetDefault("remove_outliers", d.RemoveOutliers)
	v.SetDefault("outlier_method", d.OutlierMethod)
	v.SetDefault("outlier_cap", d.OutlierCap)
	v.SetDefault("outlier_z_thresh", d.OutlierZThresh)
	v.SetDefault("outlier_cap_low", d.OutlierCapQ.Low)
	v.SetDefault("outlier_cap_high", d.OutlierCapQ.High)
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATALENS")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DataDir == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	if c.SessionDB == "" {
		c.SessionDB = filepath.Join(c.DataDir, "sessions.db")
	}
	return &c, nil
}
