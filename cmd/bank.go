package cmd

import (
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/thetacat/internal/itembank"
	"github.com/abhisek/thetacat/internal/ui/theme"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage the calibrated item bank",
}

var bankImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import items from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := itembank.LoadFile(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bank, err := openBank(cfg)
		if err != nil {
			return err
		}
		defer bank.Close()

		if err := bank.Put(items...); err != nil {
			return fmt.Errorf("import items: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items into %s\n", len(items), cfg.Storage.BankPath)
		return nil
	},
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in the bank",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bank, err := openBank(cfg)
		if err != nil {
			return err
		}
		defer bank.Close()

		items, err := bank.List()
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No items in the bank.")
			return nil
		}

		tbl := theme.Table("ID", "a", "b", "c", "Content")
		for _, it := range items {
			content := it.Content
			if len(content) > 40 {
				content = content[:37] + "..."
			}
			tbl.Row(it.ID, formatFloat(it.A), formatFloat(it.B), formatFloat(it.C), content)
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), tbl.String())
		return nil
	},
}

var bankShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bank, err := openBank(cfg)
		if err != nil {
			return err
		}
		defer bank.Close()

		it, err := bank.Get(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render(it.ID))
		lipgloss.Fprintln(out, theme.Field("Discrimination", formatFloat(it.A)))
		lipgloss.Fprintln(out, theme.Field("Difficulty", formatFloat(it.B)))
		lipgloss.Fprintln(out, theme.Field("Guessing", formatFloat(it.C)))
		if it.Content != "" {
			lipgloss.Fprintln(out, theme.Field("Content", it.Content))
		}
		return nil
	},
}

var bankDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove an item from the bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		bank, err := openBank(cfg)
		if err != nil {
			return err
		}
		defer bank.Close()

		if err := bank.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankImportCmd)
	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankShowCmd)
	bankCmd.AddCommand(bankDeleteCmd)
}
