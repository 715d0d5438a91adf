// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server, optionally serving Prometheus metrics over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/liftlog/internal/mcp"
)

var mcpMetricsAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and shares the configured backend
with the CLI.

DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "liftlog": {
        "command": "liftlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_exercise          Log an exercise at the top of the history
  log_catalog_exercise  Log an exercise from the ExerciseDB catalog
  update_exercise       Edit a logged exercise in place
  delete_exercise       Delete a logged exercise
  add_separator         Add a separator label
  update_separator      Rename a separator
  delete_separator      Delete a separator
  move_item             Move a history item to another position
  list_history          List the combined history
  list_catalog          Search the exercise catalog
  clear_all             Delete the whole history

AVAILABLE RESOURCES:

  liftlog://history   The full history, topmost first
  liftlog://catalog   The loaded exercise catalog

METRICS:

  --metrics-addr :9090 serves Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.HasCatalogKey() {
			if err := historyCoord.LoadCatalog(cmd.Context()); err != nil {
				logger.Warn("catalog unavailable", zap.Error(err))
			}
		}

		server, err := mcp.NewServer(historyCoord)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		events, unsubscribe := historyCoord.Subscribe()
		defer unsubscribe()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer stop()
			return server.Serve(gctx)
		})
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					logger.Debug("history changed",
						zap.String("op", string(ev.Op)),
						zap.String("kind", string(ev.Kind)),
						zap.Int64("id", ev.ID))
				}
			}
		})
		if mcpMetricsAddr != "" {
			g.Go(func() error {
				return serveMetrics(gctx, mcpMetricsAddr)
			})
		}
		return g.Wait()
	},
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	mcpCmd.Flags().StringVar(&mcpMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.AddCommand(mcpCmd)
}
