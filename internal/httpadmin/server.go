// Package httpadmin is the ingestor's admin HTTP surface: source and
// listing management plus manual triggers for the four scheduler
// tasks, deliberately carrying none of the teacher's OIDC/session/
// tenant/bootstrap-user machinery since this surface has a single
// caller class authenticated by one shared operator token.
package httpadmin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/scheduler"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

// Server wraps the ingestor admin fiber app and its dependencies.
type Server struct {
	app     *fiber.App
	store   *store.Store
	tasks   *scheduler.Tasks
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Registry
}

// NewServer builds the admin fiber app and registers every route.
func NewServer(cfg *config.Config, st *store.Store, tasks *scheduler.Tasks, logger *slog.Logger, m *metrics.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	s := &Server{app: app, store: st, tasks: tasks, cfg: cfg, logger: logger, metrics: m}

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.metrics.HTTPRequest("admin", c.Method(), c.Route().Path, c.Response().StatusCode())
		s.logger.Info("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"latency", time.Since(start),
		)
		return err
	})

	app.Get("/healthz", s.healthz)
	app.Get("/metrics", s.metricsHandler)

	api := app.Group("/api", bearerAuth(cfg.AdminToken))

	api.Post("/sources", s.createSource)
	api.Get("/sources", s.listSources)
	api.Get("/sources/:id", s.getSource)
	api.Patch("/sources/:id", s.updateSource)
	api.Delete("/sources/:id", s.deleteSource)
	api.Post("/sources/:id/listings", s.createListing)
	api.Get("/sources/:id/listings", s.listListings)
	api.Get("/sources/:id/listings/:listingID", s.getListing)
	api.Patch("/sources/:id/listings/:listingID", s.updateListing)
	api.Delete("/sources/:id/listings/:listingID", s.deleteListing)

	api.Post("/trigger-listing-scrape", s.triggerListingScrape)
	api.Post("/trigger-batch-create", s.triggerBatchCreate)
	api.Post("/trigger-batch-scrape", s.triggerBatchScrape)
	api.Post("/trigger-status-update", s.triggerFetchResults)

	return s
}

// Listen starts serving on the configured host:port.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.AdminPort)
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the fiber app.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) healthz(c *fiber.Ctx) error {
	if c.Query("deep") != "true" {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	mongoStatus := "ok"
	if err := s.store.Ping(ctx); err != nil {
		mongoStatus = "error: " + err.Error()
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"mongo":  mongoStatus,
	})
}

func (s *Server) metricsHandler(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4")
	return c.SendString(s.metrics.Export())
}
