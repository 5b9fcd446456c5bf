package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load resolves the configuration for a run. Precedence, lowest to
// highest: built-in defaults, ~/.aeorc.yml, ./.aeorc.yml, then any flags
// the user actually set. Missing files are silently skipped and malformed
// files degrade to the layers below them; a bad config file never stops
// an audit. Unknown keys are ignored.
func Load(flags *pflag.FlagSet) (*Config, error) {
	dirs := make([]string, 0, 2)
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	return LoadFrom(dirs, flags)
}

// LoadFrom is Load with explicit search directories, earlier entries
// being lower precedence. Tests point it at temp dirs.
func LoadFrom(searchDirs []string, flags *pflag.FlagSet) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	for _, dir := range searchDirs {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		// A malformed file is ignored; layers below it stand.
		_ = v.MergeInConfig()
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// flagBindings maps config keys to the CLI flag names that override them.
var flagBindings = map[string]string{
	"timeout":              "timeout",
	"max_pages":            "max-pages",
	"single":               "single",
	"verbose":              "verbose",
	"save":                 "save",
	"regression_threshold": "regression-threshold",
	"bots":                 "bots",
	"format":               "format",
}

// bindFlags wires the flags the CLI registered into viper. Only flags the
// user actually set override the file layers; defaults do not.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range flagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

// setDefaults registers the built-in values in viper so lower layers
// always have something to fall back to.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("max_pages", cfg.MaxPages)
	v.SetDefault("single", cfg.Single)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("save", cfg.Save)
	v.SetDefault("regression_threshold", cfg.RegressionThreshold)
	v.SetDefault("format", cfg.Format)
}
