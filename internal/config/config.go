// Package config loads thetacat settings from YAML, environment variables
// and defaults, in increasing order of precedence: defaults, file, env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all thetacat configuration.
type Config struct {
	Estimator EstimatorConfig `yaml:"estimator"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Batch     BatchConfig     `yaml:"batch"`
}

// EstimatorConfig controls the theta search.
type EstimatorConfig struct {
	// Precision is the number of decimal digits of the convergence threshold.
	Precision int  `yaml:"precision" validate:"min=1,max=15"`
	Verbose   bool `yaml:"verbose"`
}

// StorageConfig locates the on-disk databases.
type StorageConfig struct {
	DBPath   string `yaml:"db_path" validate:"required"`   // SQLite estimate log
	BankPath string `yaml:"bank_path" validate:"required"` // bbolt item bank
}

// ServerConfig configures `thetacat serve`.
type ServerConfig struct {
	Listen         string   `yaml:"listen" validate:"required"`
	MetricsPath    string   `yaml:"metrics_path" validate:"required,startswith=/"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,required"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// BatchConfig bounds concurrent estimations in a batch request.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" validate:"min=1,max=64"`
}

var validate = validator.New()

// DefaultConfig returns a Config with sensible defaults. Storage paths live
// under the XDG data directory.
func DefaultConfig() Config {
	dataDir := defaultDataDir()
	return Config{
		Estimator: EstimatorConfig{Precision: 6},
		Storage: StorageConfig{
			DBPath:   filepath.Join(dataDir, "thetacat.db"),
			BankPath: filepath.Join(dataDir, "bank.db"),
		},
		Server: ServerConfig{
			Listen:         ":8080",
			MetricsPath:    "/metrics",
			AllowedOrigins: []string{"*"},
		},
		Log:   LogConfig{Level: "info", Format: "text"},
		Batch: BatchConfig{Concurrency: 8},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and THETACAT_* environment variables. The result is validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("THETACAT_PRECISION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("THETACAT_PRECISION: %w", err)
		}
		c.Estimator.Precision = n
	}
	if v := os.Getenv("THETACAT_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("THETACAT_VERBOSE: %w", err)
		}
		c.Estimator.Verbose = b
	}
	if v := os.Getenv("THETACAT_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("THETACAT_BANK"); v != "" {
		c.Storage.BankPath = v
	}
	if v := os.Getenv("THETACAT_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("THETACAT_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("THETACAT_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("THETACAT_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("THETACAT_BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("THETACAT_BATCH_CONCURRENCY: %w", err)
		}
		c.Batch.Concurrency = n
	}
	return nil
}

// Validate checks field constraints and reports every violation.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// defaultDataDir resolves $XDG_DATA_HOME/thetacat, falling back to
// ~/.local/share/thetacat.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "thetacat-data"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "thetacat")
}
