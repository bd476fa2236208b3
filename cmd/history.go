package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded theta estimates",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent estimates",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		examinee, _ := cmd.Flags().GetString("examinee")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		events, err := s.EventRepo().QueryEstimateEvents(ctx, store.QueryOpts{
			ExamineeID: examinee,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(out, "No estimates found.")
			return nil
		}

		// Header.
		fmt.Fprintf(out, "%-6s  %-19s  %-16s  %-13s  %9s  %8s  %5s  %s\n",
			"Seq", "Timestamp", "Examinee", "Outcome", "Theta", "SE", "Evals", "Conv")
		fmt.Fprintln(out, strings.Repeat("─", 96))

		for _, e := range events {
			conv := "✓"
			if !e.Converged {
				conv = "✗"
			}
			examinee := e.ExamineeID
			if len(examinee) > 16 {
				examinee = examinee[:16]
			}
			fmt.Fprintf(out, "%-6d  %-19s  %-16s  %-13s  %9s  %8s  %5d  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				examinee,
				e.Outcome,
				formatFloat(e.Theta),
				formatFloat(e.StandardError),
				e.Evaluations,
				conv,
			)
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show estimate counts and mean theta by outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		stats, err := s.EventRepo().EstimateStats(context.Background())
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No estimates recorded yet.")
			return nil
		}

		fmt.Fprintln(out, "Estimates by Outcome")
		fmt.Fprintln(out, strings.Repeat("─", 40))
		fmt.Fprintf(out, "%-16s  %8s  %12s\n", "Outcome", "Count", "Mean theta")
		fmt.Fprintln(out, strings.Repeat("─", 40))

		var total int
		for _, st := range stats {
			fmt.Fprintf(out, "%-16s  %8d  %12s\n", st.Outcome, st.Count, formatFloat(st.MeanTheta))
			total += st.Count
		}

		fmt.Fprintln(out, strings.Repeat("─", 40))
		fmt.Fprintf(out, "%-16s  %8d\n", "TOTAL", total)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Max number of estimates to show")
	historyListCmd.Flags().String("examinee", "", "Only show estimates for this examinee")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
}
