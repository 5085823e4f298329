package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default refresh policy, applied when the config file leaves the
// refresh section empty.
const (
	DefaultRefreshMaxAge = time.Minute
	DefaultRefreshLimit  = 10
)

// Config holds the engine configuration loaded from a YAML file. The
// Gemini API key may also come from the GEMINI_API_KEY environment
// variable, which takes precedence over the file.
type Config struct {
	DBPath string `yaml:"db_path"`

	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`

	Refresh struct {
		MaxAge string `yaml:"max_age"` // Go duration string, e.g. "60s"
		Limit  int    `yaml:"limit"`
	} `yaml:"refresh"`
}

// LoadConfig reads a YAML config file. A missing file is not an error;
// defaults apply and environment variables can still supply credentials.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.Gemini.APIKey = key
	}
	if cfg.Refresh.Limit <= 0 {
		cfg.Refresh.Limit = DefaultRefreshLimit
	}
	return cfg, nil
}

// RefreshMaxAge parses the configured staleness threshold, falling back
// to the default when unset.
func (c *Config) RefreshMaxAge() (time.Duration, error) {
	if c.Refresh.MaxAge == "" {
		return DefaultRefreshMaxAge, nil
	}
	d, err := time.ParseDuration(c.Refresh.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("invalid refresh max_age %q: %w", c.Refresh.MaxAge, err)
	}
	return d, nil
}
