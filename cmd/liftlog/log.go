// ABOUTME: CLI commands for logging, editing and deleting exercises.
// ABOUTME: New exercises go to the top of the history.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/liftlog/internal/history"
)

var (
	logMuscle string
	logSets   int
	logReps   int
	logWeight float64
	editName  string
)

var logCmd = &cobra.Command{
	Use:     "log <exercise name>",
	Aliases: []string{"add", "a"},
	Short:   "Log an exercise",
	Long: `Log an exercise at the top of the history.

Examples:
  liftlog log "Bench Press" --sets 3 --reps 8 --weight 80
  liftlog log Squat -s 5 -r 5 -w 100 --muscle quads
  liftlog log "Plank"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := history.ExerciseInput{Name: strings.Join(args, " ")}
		applyExerciseFlags(cmd, &in)

		id, err := historyCoord.LogExercise(cmd.Context(), in)
		if err != nil {
			if id != 0 {
				color.Yellow("⚠ Logged #%d but the history order was not saved: %v", id, err)
			}
			return fmt.Errorf("failed to log exercise: %w", err)
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

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a logged exercise",
	Long: `Edit a logged exercise in place. Only the flags you pass are changed;
the logged time and history position stay the same.

Pass an empty --muscle or a zero --sets/--reps/--weight to clear a field.

Examples:
  liftlog edit 12 --weight 82.5
  liftlog edit 12 --name "Incline Bench Press" --sets 4`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		rec, err := historyCoord.LogRecord(id)
		if err != nil {
			return fmt.Errorf("exercise not found: %s", args[0])
		}

		in := history.ExerciseInput{
			Name:   rec.ExerciseName,
			Muscle: rec.Muscle,
			Sets:   rec.Sets,
			Reps:   rec.Reps,
			Weight: rec.Weight,
		}
		if cmd.Flags().Changed("name") {
			in.Name = editName
		}
		applyExerciseFlags(cmd, &in)

		if err := historyCoord.UpdateExercise(cmd.Context(), id, in); err != nil {
			return fmt.Errorf("failed to update exercise: %w", err)
		}

		updated, err := historyCoord.LogRecord(id)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Updated %s", updated.ExerciseName))
		fmt.Fprintf(out, "  %s\n", describeRecord(updated))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a logged exercise",
	Long: `Delete a logged exercise by its id. The id is shown in the first
column of 'liftlog history'.

CAUTION:

  This permanently deletes the exercise. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		rec, err := historyCoord.LogRecord(id)
		if err != nil {
			return fmt.Errorf("exercise not found: %s", args[0])
		}

		if err := historyCoord.DeleteExercise(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete exercise: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.YellowString("✗ Deleted %s", rec.ExerciseName))
		fmt.Fprintf(out, "  %s\n", describeRecord(rec))
		return nil
	},
}

// applyExerciseFlags copies the explicitly passed exercise flags onto in.
func applyExerciseFlags(cmd *cobra.Command, in *history.ExerciseInput) {
	flags := cmd.Flags()
	if flags.Changed("muscle") {
		in.Muscle = nil
		if m := strings.TrimSpace(logMuscle); m != "" {
			in.Muscle = &m
		}
	}
	if flags.Changed("sets") {
		in.Sets = positiveInt(logSets)
	}
	if flags.Changed("reps") {
		in.Reps = positiveInt(logReps)
	}
	if flags.Changed("weight") {
		in.Weight = nil
		if logWeight > 0 {
			w := logWeight
			in.Weight = &w
		}
	}
}

func positiveInt(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func addExerciseFlags(cmd *cobra.Command, withMuscle bool) {
	if withMuscle {
		cmd.Flags().StringVarP(&logMuscle, "muscle", "m", "", "target muscle")
	}
	cmd.Flags().IntVarP(&logSets, "sets", "s", 0, "number of sets")
	cmd.Flags().IntVarP(&logReps, "reps", "r", 0, "reps per set")
	cmd.Flags().Float64VarP(&logWeight, "weight", "w", 0, "weight per rep")
}

func init() {
	addExerciseFlags(logCmd, true)
	addExerciseFlags(editCmd, true)
	editCmd.Flags().StringVar(&editName, "name", "", "new exercise name")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
}
