package config

import "fmt"

var knownFormats = map[string]bool{
	"":         true,
	"table":    true,
	"json":     true,
	"markdown": true,
	"csv":      true,
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.Timeout)
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be at least 1, got %d", c.MaxPages)
	}
	if c.RegressionThreshold < 0 {
		return fmt.Errorf("regression_threshold must not be negative, got %g", c.RegressionThreshold)
	}
	if !knownFormats[c.Format] {
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
