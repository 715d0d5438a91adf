// ABOUTME: CLI command for copying the history between storage backends.
// ABOUTME: Remaps store-assigned ids so the destination keeps the same order.
package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/liftlog/internal/storage"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the history to another backend",
	Long: `Copy all exercises, separators and the history order from one storage
backend to another. Backends are sqlite, postgres and charm, using the
settings from ~/.config/liftlog/config.json and the environment.

IMPORTANT:

  - The destination must be empty; migration is refused otherwise
  - The source is left untouched
  - Run with --dry-run first to see what would be copied

USAGE:

  liftlog migrate --from sqlite --to postgres --dry-run
  liftlog migrate --from charm --to sqlite

Afterwards set "backend" in the config (or LIFTLOG_BACKEND) to the
destination.`,
	Annotations: map[string]string{skipStoreAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == "" || migrateTo == "" {
			return fmt.Errorf("both --from and --to are required")
		}
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination backends are the same: %s", migrateFrom)
		}

		src, err := openBackend(migrateFrom)
		if err != nil {
			return err
		}
		defer src.Close()

		if migrateDryRun {
			return previewMigration(cmd.Context(), cmd, src)
		}

		dst, err := openBackend(migrateTo)
		if err != nil {
			return err
		}
		defer dst.Close()

		summary, err := storage.MigrateData(cmd.Context(), src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("migration complete",
			zap.String("from", migrateFrom),
			zap.String("to", migrateTo),
			zap.Int("log_records", summary.LogRecords),
			zap.Int("separators", summary.Separators),
			zap.Int("orphans", summary.Orphans))

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, color.GreenString("✓ Migrated %s → %s", migrateFrom, migrateTo))
		fmt.Fprintf(out, "  Exercises:     %d\n", summary.LogRecords)
		fmt.Fprintf(out, "  Separators:    %d\n", summary.Separators)
		fmt.Fprintf(out, "  Order entries: %d\n", summary.OrderEntries)
		if summary.Orphans > 0 {
			fmt.Fprintln(out, color.YellowString("  Dropped %d order entries with no record", summary.Orphans))
		}
		return nil
	},
}

func openBackend(name string) (storage.Repository, error) {
	c := *cfg
	c.Backend = name
	repo, err := c.OpenStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", name, err)
	}
	return repo, nil
}

func previewMigration(ctx context.Context, cmd *cobra.Command, src storage.Repository) error {
	records, err := src.ListLogRecords(ctx)
	if err != nil {
		return err
	}
	seps, err := src.ListSeparators(ctx)
	if err != nil {
		return err
	}
	order, err := src.ListOrder(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.YellowString("Dry run mode - no changes will be made"))
	fmt.Fprintf(out, "Would copy from %s to %s:\n", migrateFrom, migrateTo)
	fmt.Fprintf(out, "  Exercises:     %d\n", len(records))
	fmt.Fprintf(out, "  Separators:    %d\n", len(seps))
	fmt.Fprintf(out, "  Order entries: %d\n", len(order))
	return nil
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
