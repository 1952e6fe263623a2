// Package httpagent is the scraping agent's HTTP surface: job
// submission plus status/result polling, following the teacher's
// fiber-based router/middleware split.
package httpagent

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/queue"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

// Server wraps the agent's fiber app and its dependencies.
type Server struct {
	app     *fiber.App
	store   *store.Store
	queue   *queue.Queue
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Registry
}

// NewServer builds the agent's fiber app and registers every route.
func NewServer(cfg *config.Config, st *store.Store, q *queue.Queue, logger *slog.Logger, m *metrics.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	s := &Server{app: app, store: st, queue: q, cfg: cfg, logger: logger, metrics: m}

	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.metrics.HTTPRequest("agent", c.Method(), c.Route().Path, c.Response().StatusCode())
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

	v1 := app.Group("", bearerAuth(cfg.Agent.Token))
	v1.Post("/scrape", s.submitScrape)
	v1.Get("/scrape/:id/status/", s.jobStatus)
	v1.Get("/scrape/:id/result/", s.jobResult)

	return s
}

// Listen starts serving on addr.
func (s *Server) Listen(addr string) error {
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
