package cmd

import (
	"errors"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/irt"
	"github.com/abhisek/thetacat/internal/itembank"
	"github.com/abhisek/thetacat/internal/ui/theme"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show item and test information at a theta",
	Long: "Prints the probability of a correct response and the Fisher information\n" +
		"of each item at --theta, with the total test information and standard error.\n" +
		"Items come from an item file (--items) or from the bank (--ids).",
	RunE: func(cmd *cobra.Command, args []string) error {
		theta, _ := cmd.Flags().GetFloat64("theta")
		itemsPath, _ := cmd.Flags().GetString("items")
		ids, _ := cmd.Flags().GetStringSlice("ids")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var bankItems []itembank.Item
		switch {
		case itemsPath != "" && len(ids) > 0:
			return errors.New("use either --items or --ids, not both")
		case itemsPath != "":
			bankItems, err = itembank.LoadFile(itemsPath)
			if err != nil {
				return err
			}
		case len(ids) > 0:
			bank, err := openBank(cfg)
			if err != nil {
				return err
			}
			defer bank.Close()
			for _, id := range ids {
				it, err := bank.Get(id)
				if err != nil {
					return err
				}
				bankItems = append(bankItems, it)
			}
		default:
			return errors.New("one of --items or --ids is required")
		}

		items := make(irt.Items, len(bankItems))
		for i, it := range bankItems {
			items[i] = it.Params()
		}

		svc := estimation.NewService(estimation.Options{Logger: newLogger(cfg)})
		rep, err := svc.Information(theta, items)
		if err != nil {
			return err
		}

		tbl := theme.Table("ID", "a", "b", "c", "P(correct)", "Information")
		for i, it := range bankItems {
			p, err := it.Params().Probability(theta)
			if err != nil {
				return fmt.Errorf("probability for %s: %w", it.ID, err)
			}
			tbl.Row(it.ID,
				formatFloat(it.A), formatFloat(it.B), formatFloat(it.C),
				formatFloat(p), formatFloat(rep.Items[i].Information))
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("Information at theta = %s", formatFloat(theta))))
		lipgloss.Fprintln(out, tbl.String())
		lipgloss.Fprintln(out, theme.Field("Total", formatFloat(rep.Total)))
		lipgloss.Fprintln(out, theme.Field("Std. error", formatFloat(rep.StandardError)))
		return nil
	},
}

func init() {
	infoCmd.Flags().Float64("theta", 0, "Proficiency at which to evaluate the items")
	infoCmd.Flags().String("items", "", "YAML or JSON item file")
	infoCmd.Flags().StringSlice("ids", nil, "Comma-separated bank item IDs")
}
