package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/config"
	"github.com/abhisek/thetacat/internal/itembank"
	"github.com/abhisek/thetacat/internal/logging"
	"github.com/abhisek/thetacat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "thetacat",
	Short: "Theta estimation for computerized adaptive tests",
	Long: "thetacat estimates a test-taker's proficiency (theta) from scored item\n" +
		"responses under the three-parameter logistic IRT model.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite estimate log (overrides THETACAT_DB env var)")
	rootCmd.PersistentFlags().String("bank", "", "Path to bbolt item bank (overrides THETACAT_BANK env var)")

	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration from --config, THETACAT_* env vars and
// the --db/--bank flags (highest priority).
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Storage.DBPath = p
	}
	if p, _ := cmd.Flags().GetString("bank"); p != "" {
		cfg.Storage.BankPath = p
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Log)
}

func openStore(cfg config.Config) (*store.Store, error) {
	if err := config.EnsureDir(cfg.Storage.DBPath); err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func openBank(cfg config.Config) (*itembank.Store, error) {
	b, err := itembank.Open(cfg.Storage.BankPath)
	if err != nil {
		return nil, fmt.Errorf("open item bank: %w", err)
	}
	return b, nil
}
