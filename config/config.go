// Package config loads the YAML configuration shared by every moodfuel command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Dataset struct {
		Path    string `yaml:"path"`
		Samples int    `yaml:"samples"`
		Seed    int64  `yaml:"seed"`
	} `yaml:"dataset"`
	ML struct {
		ModelPath  string   `yaml:"model_path"`
		TestRatio  float64  `yaml:"test_ratio"`
		SplitSeed  *int64   `yaml:"split_seed"`
		CVFolds    int      `yaml:"cv_folds"`
		Trees      int      `yaml:"trees"`
		MaxDepth   int      `yaml:"max_depth"`
		CacheSize  int      `yaml:"cache_size"`
		ModelSeed  *int64   `yaml:"model_seed"`
		Candidates []string `yaml:"candidates"`
	} `yaml:"ml"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path and fills unset fields with defaults. A missing file is not
// an error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
	if c.Http.Port == 0 {
		c.Http.Port = 8000
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/moodfuel.db"
	}
	if c.Dataset.Path == "" {
		c.Dataset.Path = "data/coffee_strength_dataset.csv"
	}
	if c.Dataset.Samples == 0 {
		c.Dataset.Samples = 1000
	}
	if c.ML.ModelPath == "" {
		c.ML.ModelPath = "model/model.json"
	}
	if c.ML.TestRatio == 0 {
		c.ML.TestRatio = 0.2
	}
	if c.ML.SplitSeed == nil {
		c.ML.SplitSeed = seed(defaultSeed)
	}
	if c.ML.CVFolds == 0 {
		c.ML.CVFolds = 5
	}
	if c.ML.Trees == 0 {
		c.ML.Trees = 200
	}
	if c.ML.CacheSize == 0 {
		c.ML.CacheSize = 1024
	}
	if c.ML.ModelSeed == nil {
		c.ML.ModelSeed = seed(defaultSeed)
	}
}

// defaultSeed applies when split_seed or model_seed is absent. An explicit 0
// is kept; unlike dataset.seed it does not mean "seed from the clock".
const defaultSeed = 42

func seed(v int64) *int64 { return &v }

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var err error
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		err = multierr.Append(err, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	if c.Http.Port < 0 || c.Http.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("http.port: %d out of range", c.Http.Port))
	}
	if c.Dataset.Samples < 0 {
		err = multierr.Append(err, fmt.Errorf("dataset.samples: must be positive, got %d", c.Dataset.Samples))
	}
	if c.ML.TestRatio <= 0 || c.ML.TestRatio >= 1 {
		err = multierr.Append(err, fmt.Errorf("ml.test_ratio: must be in (0,1), got %v", c.ML.TestRatio))
	}
	if c.ML.CVFolds < 2 {
		err = multierr.Append(err, fmt.Errorf("ml.cv_folds: need at least 2, got %d", c.ML.CVFolds))
	}
	if c.ML.Trees < 1 {
		err = multierr.Append(err, fmt.Errorf("ml.trees: need at least 1, got %d", c.ML.Trees))
	}
	if c.ML.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("ml.max_depth: must not be negative, got %d", c.ML.MaxDepth))
	}
	if c.ML.CacheSize < 0 {
		err = multierr.Append(err, fmt.Errorf("ml.cache_size: must not be negative, got %d", c.ML.CacheSize))
	}
	return err
}
