// ABOUTME: CLI commands for exporting and importing the workout history.
// ABOUTME: Supports JSON, YAML, and Markdown exports to stdout, a file, or the backup sink.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/liftlog/internal/export"
)

var (
	exportOutput string
	exportBackup bool
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export the workout history",
	Long: `Export the workout history in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable, also importable)
  markdown   Markdown tables, one per separator section

DESTINATIONS:

  stdout (default)
  --output, -o   Write to a file
  --backup       Write to the configured backup sink: the S3 bucket from
                 backup.s3_bucket / LIFTLOG_BACKUP_S3_BUCKET, otherwise
                 ~/.local/share/liftlog/backups/

EXAMPLES:

  liftlog export json                  # Print JSON to stdout
  liftlog export json -o backup.json   # Save to file
  liftlog export yaml --backup         # Upload a YAML snapshot
  liftlog export markdown              # Tables for sharing`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(args[0])
		if err != nil {
			return err
		}

		snap := export.Build(historyCoord)
		data, err := snap.Encode(format)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		switch {
		case exportBackup:
			sink, err := cfg.BackupSink(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to configure backup: %w", err)
			}
			where, err := sink.Write(cmd.Context(), export.FileName(snap, format), format.ContentType(), data)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			logger.Debug("backup written", zap.String("location", where), zap.Int("bytes", len(data)))
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Backed up to %s", where))
		case exportOutput != "":
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Exported to %s", exportOutput))
		default:
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON or YAML export",
	Long: `Import a history snapshot written by 'liftlog export json|yaml'.

Imported items are added below the existing history in their exported
order, keeping their logged times. New ids are assigned.

EXAMPLES:

  liftlog import backup.json
  liftlog import backup.txt --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		name := importFormat
		if name == "" {
			name = strings.TrimPrefix(filepath.Ext(filename), ".")
		}
		format, err := export.ParseFormat(name)
		if err != nil {
			return fmt.Errorf("cannot detect format of %s; pass --format json|yaml", filename)
		}

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		snap, err := export.Decode(data, format)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		items, err := snap.Items()
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		n, err := historyCoord.Import(cmd.Context(), items)
		if err != nil {
			if n > 0 {
				color.Yellow("⚠ Imported %d of %d items before failing", n, len(items))
			}
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓ Imported %d items from %s", n, filename))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportBackup, "backup", false, "write to the configured backup sink")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "snapshot format: json or yaml (default: from extension)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
