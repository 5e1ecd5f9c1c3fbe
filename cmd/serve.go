package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/config"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/pipeline"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd runs the pipeline on a schedule and serves the latest snapshot
// over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the monitoring server",
	Long: `Starts an HTTP server exposing the latest reconciliation snapshot and
refreshes it in the background at the configured interval.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		store := &server.Store{}
		app := server.New(cfg.Server, store, logg)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 3. Background Refresh Loop
		go refreshLoop(ctx, cfg, logg, store)

		// 4. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 5. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		cancel()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

// refreshLoop runs the pipeline immediately and then at the configured
// interval until the context is cancelled.
func refreshLoop(ctx context.Context, cfg *config.Config, logg *zap.Logger, store *server.Store) {
	refresh := func() {
		result, err := pipeline.Run(ctx, cfg, logg)
		if err != nil {
			logg.Error("Pipeline run failed, keeping previous snapshot", zap.Error(err))
			return
		}
		store.Set(&server.Snapshot{
			RunID:         result.RunID,
			GeneratedAt:   result.FinishedAt,
			CMDBAvailable: result.CMDBAvailable,
			Records:       result.Records,
			Stats:         result.Stats,
		})
	}

	refresh()

	interval := time.Duration(cfg.Server.RefreshMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh()
		}
	}
}
