// ABOUTME: CLI commands for viewing and reordering the history.
// ABOUTME: Covers history listing, move, and clear.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/liftlog/internal/models"
)

var (
	historyLimit int
	historyKind  string
	clearYes     bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list", "ls", "l"},
	Short:   "Show the workout history",
	Long: `Show the combined history of logged exercises and separators, newest first.

OUTPUT FORMAT:

  Each line shows: POSITION  #ID  TIMESTAMP  EXERCISE  VOLUME  (MUSCLE)
  Separators show as: POSITION  #ID  ── TEXT ──

  POSITION is what 'liftlog move' takes. #ID is what edit, delete and
  'sep edit|rm' take.

EXAMPLES:

  liftlog history                 # Show the top 20 items
  liftlog history -n 0            # Show everything
  liftlog history --kind exercise # Only logged exercises`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var kind models.ItemKind
		if historyKind != "" {
			k, err := models.ParseItemKind(historyKind)
			if err != nil {
				return err
			}
			kind = k
		}

		items := historyCoord.History()
		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No history yet.")
			return nil
		}

		shown := 0
		for i, item := range items {
			if historyLimit > 0 && shown >= historyLimit {
				break
			}
			if kind != "" && item.Kind() != kind {
				continue
			}
			fmt.Fprintf(out, "%s %s\n", faint.Sprintf("%3d", i), describeItem(item))
			shown++
		}
		if shown < len(items) && kind == "" {
			fmt.Fprintln(out, faint.Sprintf("... %d more (use -n 0 to show all)", len(items)-shown))
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <from> <to>",
	Aliases: []string{"mv"},
	Short:   "Move a history item to another position",
	Long: `Move the item at position <from> to position <to>, shifting the items
in between. Positions are shown in the first column of 'liftlog history'.

Examples:
  liftlog move 0 3    # Push the newest item three places down
  liftlog move 5 0    # Bring item 5 to the top`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		to, err := parsePosition(args[1])
		if err != nil {
			return err
		}

		if err := historyCoord.Move(cmd.Context(), from, to); err != nil {
			return fmt.Errorf("failed to move item: %w", err)
		}

		items := historyCoord.History()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Moved %d → %d", from, to))
		fmt.Fprintf(out, "  %s\n", describeItem(items[to]))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all exercises and separators",
	Long: `Delete every logged exercise, separator and the history order.

This is a DESTRUCTIVE operation. Export a backup first:
  liftlog export json -o backup.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			fmt.Println("This will PERMANENTLY DELETE your whole workout history.")
			if !confirm(cmd, "Type 'clear' to confirm: ", "clear") {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if err := historyCoord.ClearAll(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ History cleared"))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "max number of items (0 for all)")
	historyCmd.Flags().StringVarP(&historyKind, "kind", "k", "", "only show exercise or separator items")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation prompt")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(clearCmd)
}
