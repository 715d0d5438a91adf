// ABOUTME: Root Cobra command for liftlog CLI.
// ABOUTME: Handles config, logger, store and history lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harperreed/liftlog/internal/config"
	"github.com/harperreed/liftlog/internal/history"
	"github.com/harperreed/liftlog/internal/storage"
)

// skipStoreAnnotation marks commands that manage storage themselves.
const skipStoreAnnotation = "liftlog/skip-store"

var (
	verbose      bool
	backendFlag  string
	cfg          *config.Config
	logger       *zap.Logger
	repo         storage.Repository
	historyCoord *history.Coordinator
)

var rootCmd = &cobra.Command{
	Use:   "liftlog",
	Short: "Workout history logger",
	Long: `Liftlog is a CLI tool for logging strength workouts.

Logged exercises and separator labels share one ordered history, newest
first. Separators group sets into days or sessions and can be moved like
any other item.

QUICK START:

  $ liftlog log "Bench Press" --sets 3 --reps 8 --weight 80
  $ liftlog sep add "Push day"               # Label the entries below it
  $ liftlog history                          # Show the history
  $ liftlog move 0 2                         # Reorder items by position
  $ liftlog edit 4 --weight 82.5             # Fix a logged exercise

EXERCISE CATALOG:

  Set EXERCISEDB_API_KEY to browse the ExerciseDB catalog.

  $ liftlog catalog list bench               # Search the catalog
  $ liftlog catalog log 0025 --sets 3        # Log a catalog exercise

BACKENDS:

  sqlite (default)  ~/.local/share/liftlog/liftlog.db
  postgres          LIFTLOG_POSTGRES_DSN or postgres_dsn in config
  charm             Charm KV, E2E encrypted and synced across devices

  Configure with ~/.config/liftlog/config.json, LIFTLOG_BACKEND, or --backend.

MCP INTEGRATION:

  Run 'liftlog mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "liftlog": { "command": "liftlog", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg.ApplyEnv(os.Getenv)
		if backendFlag != "" {
			cfg.Backend = backendFlag
		}

		if skipStore(cmd) {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}

		historyCoord = history.New(repo, cfg.CatalogClient(), logger)
		if err := historyCoord.LoadPersistedState(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		logger.Debug("history loaded",
			zap.String("backend", cfg.GetBackend()),
			zap.Int("items", len(historyCoord.History())))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

func skipStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipStoreAnnotation]; ok {
			return true
		}
	}
	return false
}

func closeAll() error {
	var err error
	if repo != nil {
		err = repo.Close()
		repo = nil
	}
	historyCoord = nil
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// newLogger builds a production logger on stderr, at debug level when verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite, postgres or charm")
}
