// Package config loads and saves the tool's yaml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const configFileName = "config.yaml"

var configDirFunc = configDir

type Config struct {
	// Format is the default output format: "text" or "json".
	Format string `yaml:"format,omitempty"`

	// CompareThresholdPct is the minimum percentage change in cost or
	// elapsed time the comparator reports as significant.
	CompareThresholdPct float64 `yaml:"compare_threshold_pct,omitempty"`
}

func Default() Config {
	return Config{
		Format:              "text",
		CompareThresholdPct: 1.0,
	}
}

// Load reads the config file, falling back to defaults when it does not
// exist. Unset fields take their default values.
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.CompareThresholdPct <= 0 {
		cfg.CompareThresholdPct = 1.0
	}
	return cfg, nil
}

func Save(cfg Config) error {
	if err := ensureConfigDir(); err != nil {
		return err
	}

	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

const template = `# sqlplan configuration

# Default output format: text or json
format: text

# Minimum percentage change in cost or elapsed time that "sqlplan compare"
# reports as significant
compare_threshold_pct: 1.0
`

// Init writes the commented template and returns its path. An existing
// file is only overwritten when force is set.
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := ensureConfigDir(); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(template), 0600); err != nil {
		return "", fmt.Errorf("writing config %s: %w", path, err)
	}
	return path, nil
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("finding config directory: %w", err)
	}
	return filepath.Join(base, "sqlplan"), nil
}

func configPath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

func ensureConfigDir() error {
	dir, err := configDirFunc()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}
