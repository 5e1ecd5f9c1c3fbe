package server

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/logger"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/middleware/auth"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/middleware/rayid"
	"github.com/Ramzibenchaabane/illumio-monitoring-tool/core/reconcile"
)

// Snapshot is the result of one completed pipeline run.
type Snapshot struct {
	RunID         string             `json:"run_id"`
	GeneratedAt   time.Time          `json:"generated_at"`
	CMDBAvailable bool               `json:"cmdb_available"`
	Records       []reconcile.Record `json:"records"`
	Stats         *reconcile.Stats   `json:"stats"`
}

// Store holds the latest snapshot. The refresh loop writes, handlers read.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Set replaces the latest snapshot.
func (s *Store) Set(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Latest returns the most recent snapshot, or nil before the first run
// completes.
func (s *Store) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// New builds the Fiber app serving the latest run snapshot.
func New(cfg Config, store *Store, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(log, c)
		l.Info("request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("request error", zap.Error(err))
		}
		return err
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1", auth.New(auth.Config{ApiKey: cfg.ApiKey}))

	api.Get("/summary", func(c *fiber.Ctx) error {
		snap := store.Latest()
		if snap == nil {
			return noSnapshot(c)
		}
		return c.JSON(fiber.Map{
			"run_id":         snap.RunID,
			"generated_at":   snap.GeneratedAt,
			"cmdb_available": snap.CMDBAvailable,
			"stats":          snap.Stats,
		})
	})

	api.Get("/records", func(c *fiber.Ctx) error {
		snap := store.Latest()
		if snap == nil {
			return noSnapshot(c)
		}

		records := snap.Records
		if status := c.Query("status"); status != "" {
			filtered := make([]reconcile.Record, 0, len(records))
			for _, r := range records {
				if string(r.Status) == status {
					filtered = append(filtered, r)
				}
			}
			records = filtered
		}

		return c.JSON(fiber.Map{
			"run_id":  snap.RunID,
			"count":   len(records),
			"records": records,
		})
	})

	return app
}

func noSnapshot(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "no completed run yet",
	})
}
