// ABOUTME: CLI commands for separator labels in the history.
// ABOUTME: Supports add, edit, and rm subcommands.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sepCmd = &cobra.Command{
	Use:     "sep",
	Aliases: []string{"separator"},
	Short:   "Manage separator labels",
	Long: `Separators are text labels in the history, such as "Leg day" or
"Week 3". They sit between logged exercises and move like them.

COMMANDS:

  add    Add a separator at the top of the history
  edit   Rename a separator
  rm     Delete a separator`,
}

var sepAddCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a separator",
	Long: `Add a separator at the top of the history.

Examples:
  liftlog sep add "Leg day"
  liftlog sep add Week 3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		id, err := historyCoord.AddSeparator(cmd.Context(), text)
		if err != nil {
			if id != 0 {
				color.Yellow("⚠ Added #%d but the history order was not saved: %v", id, err)
			}
			return fmt.Errorf("failed to add separator: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Added separator"))
		fmt.Fprintf(out, "  %s\n", describeSeparator(id, text))
		return nil
	},
}

var sepEditCmd = &cobra.Command{
	Use:   "edit <id> <text>",
	Short: "Rename a separator",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if _, err := historyCoord.Separator(id); err != nil {
			return fmt.Errorf("separator not found: %s", args[0])
		}

		text := strings.Join(args[1:], " ")
		if err := historyCoord.UpdateSeparator(cmd.Context(), id, text); err != nil {
			return fmt.Errorf("failed to update separator: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Renamed separator"))
		fmt.Fprintf(out, "  %s\n", describeSeparator(id, text))
		return nil
	},
}

var sepRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a separator",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		sep, err := historyCoord.Separator(id)
		if err != nil {
			return fmt.Errorf("separator not found: %s", args[0])
		}

		if err := historyCoord.DeleteSeparator(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete separator: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.YellowString("✗ Deleted separator"))
		fmt.Fprintf(out, "  %s\n", describeSeparator(sep.ID, sep.Text))
		return nil
	},
}

func init() {
	sepCmd.AddCommand(sepAddCmd)
	sepCmd.AddCommand(sepEditCmd)
	sepCmd.AddCommand(sepRmCmd)
	rootCmd.AddCommand(sepCmd)
}
