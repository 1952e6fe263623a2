// Command agent runs the scraping agent process: the job-plane HTTP
// surface plus the worker pool that drains the priority queue.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/httpagent"
	"github.com/wearlytic/fashionpipeline/internal/jobs"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/queue"
	"github.com/wearlytic/fashionpipeline/internal/scraper"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("connect mongo: %v", err)
	}
	defer st.Close(context.Background())

	rdb, err := queue.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	q := queue.New(rdb)

	m := metrics.New()
	registry := scraper.DefaultRegistry()
	cache := scraper.NewCache(cfg.ScraperCacheMaxSize, logger, m.CacheEviction)

	runner := jobs.NewRunner(cfg.Worker, st, q, registry, cache, logger, m)
	go runner.Start(ctx)

	srv := httpagent.NewServer(cfg, st, q, logger, m)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("scraping agent listening", "addr", addr)
	if err := srv.Listen(addr); err != nil {
		log.Fatalf("agent server failed: %v", err)
	}
}
