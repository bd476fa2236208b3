package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/itembank"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate [file]",
	Short: "Estimate theta from a response-set JSON file (or stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("precision") {
			cfg.Estimator.Precision, _ = cmd.Flags().GetInt("precision")
		}
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			cfg.Estimator.Verbose = true
			cfg.Log.Level = "debug"
		}
		noRecord, _ := cmd.Flags().GetBool("no-record")
		logger := newLogger(cfg)

		raw, err := readInput(cmd, args)
		if err != nil {
			return err
		}
		rs, err := itembank.ParseResponseSet(raw)
		if err != nil {
			return err
		}

		opts := estimation.Options{
			Logger:    logger,
			Precision: cfg.Estimator.Precision,
			Verbose:   cfg.Estimator.Verbose,
		}
		if referencesBank(rs) {
			bank, err := openBank(cfg)
			if err != nil {
				return err
			}
			defer bank.Close()
			opts.Bank = bank
		}
		if !noRecord {
			s, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer s.Close()
			opts.Events = s.EventRepo()
		}

		svc := estimation.NewService(opts)
		req, err := svc.Resolve(rs)
		if err != nil {
			return err
		}
		est, err := svc.Estimate(context.Background(), req)
		if err != nil {
			return err
		}

		lipgloss.Fprintln(cmd.OutOrStdout(), renderEstimate(est))
		return nil
	},
}

func init() {
	estimateCmd.Flags().Int("precision", 0, "Convergence digits (overrides config)")
	estimateCmd.Flags().BoolP("verbose", "v", false, "Log search progress")
	estimateCmd.Flags().Bool("no-record", false, "Do not append the estimate to the event log")
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return raw, nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read response set: %w", err)
	}
	return raw, nil
}

func referencesBank(rs *itembank.ResponseSet) bool {
	for _, r := range rs.Responses {
		if r.ItemID != "" {
			return true
		}
	}
	return false
}
