// ABOUTME: CLI commands for browsing the ExerciseDB catalog.
// ABOUTME: Supports list, show, and logging a catalog exercise.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/liftlog/internal/catalog"
	"github.com/harperreed/liftlog/internal/models"
)

var catalogLimit int

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"c"},
	Short:   "Browse the exercise catalog",
	Long: `Browse the ExerciseDB catalog and log exercises from it.

The catalog is fetched from ExerciseDB on each call. Set EXERCISEDB_API_KEY
(or catalog.api_key in ~/.config/liftlog/config.json) to authenticate.

COMMANDS:

  list   Search the catalog by name, body part or target muscle
  show   Show one catalog exercise
  log    Log a catalog exercise to the history`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Search the catalog",
	Long: `Search the catalog by name, body part or target muscle.

Examples:
  liftlog catalog list
  liftlog catalog list bench
  liftlog catalog list chest -n 50`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadCatalog(cmd); err != nil {
			return err
		}

		matches := catalog.Filter(historyCoord.Catalog(), strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintln(out, "No catalog exercises found.")
			return nil
		}

		for i, ex := range matches {
			if catalogLimit > 0 && i >= catalogLimit {
				fmt.Fprintln(out, faint.Sprintf("... %d more", len(matches)-i))
				break
			}
			fmt.Fprintln(out, describeCatalog(ex))
		}
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <catalog id>",
	Short: "Show a catalog exercise",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadCatalog(cmd); err != nil {
			return err
		}

		ex, err := historyCoord.CatalogExercise(args[0])
		if err != nil {
			return fmt.Errorf("catalog exercise not found: %s", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.New(color.Bold).Sprint(ex.Name))
		fmt.Fprintf(out, "  ID:        %s\n", ex.ID)
		fmt.Fprintf(out, "  Body part: %s\n", deref(ex.BodyPart))
		fmt.Fprintf(out, "  Target:    %s\n", deref(ex.Target))
		return nil
	},
}

var catalogLogCmd = &cobra.Command{
	Use:   "log <catalog id>",
	Short: "Log a catalog exercise",
	Long: `Log a catalog exercise at the top of the history. The catalog target
becomes the exercise's muscle.

Examples:
  liftlog catalog log 0025 --sets 3 --reps 10 --weight 60`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadCatalog(cmd); err != nil {
			return err
		}

		var sets, reps *int
		var weight *float64
		if cmd.Flags().Changed("sets") {
			sets = positiveInt(logSets)
		}
		if cmd.Flags().Changed("reps") {
			reps = positiveInt(logReps)
		}
		if cmd.Flags().Changed("weight") && logWeight > 0 {
			w := logWeight
			weight = &w
		}

		id, err := historyCoord.LogFromCatalog(cmd.Context(), args[0], sets, reps, weight)
		if err != nil {
			return fmt.Errorf("failed to log catalog exercise: %w", err)
		}

		rec, err := historyCoord.LogRecord(id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Logged %s", rec.ExerciseName))
		fmt.Fprintf(out, "  %s\n", describeRecord(rec))
		return nil
	},
}

func loadCatalog(cmd *cobra.Command) error {
	if !cfg.HasCatalogKey() {
		color.Yellow("⚠ No ExerciseDB API key configured; set EXERCISEDB_API_KEY")
	}
	if err := historyCoord.LoadCatalog(cmd.Context()); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	return nil
}

func describeCatalog(ex models.CatalogExercise) string {
	return fmt.Sprintf("%s %s %s",
		faint.Sprint(padRight(ex.ID, 6)),
		padRight(truncate(ex.Name, 36), 36),
		faint.Sprintf("%s / %s", deref(ex.BodyPart), deref(ex.Target)))
}

func deref(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func init() {
	catalogListCmd.Flags().IntVarP(&catalogLimit, "limit", "n", 20, "max number of results (0 for all)")
	addExerciseFlags(catalogLogCmd, false)

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogLogCmd)
	rootCmd.AddCommand(catalogCmd)
}
