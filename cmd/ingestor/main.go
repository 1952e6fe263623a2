// Command ingestor runs the control-plane process: the admin HTTP
// surface, the four periodic scheduler tasks, and a one-shot "trigger"
// CLI subcommand that runs a single task outside its normal cadence.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wearlytic/fashionpipeline/internal/agentclient"
	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/httpadmin"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/scheduler"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:          "ingestor",
		Short:        "Ingestor runs the fashion-product ingestion control plane",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
	root.AddCommand(newTriggerCmd())

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer st.Close(context.Background())

	agent := agentclient.New(cfg.Agent.BaseURL, cfg.Agent.Token, cfg.Worker.SubmitTimeout)
	m := metrics.New()

	tasks := scheduler.NewTasks(st, agent, cfg.Scheduler, logger, m)
	sched := scheduler.New(tasks, logger)
	sched.Start(ctx)
	defer sched.Stop()

	srv := httpadmin.NewServer(cfg, st, tasks, logger, m)
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("ingestor admin surface listening", "host", cfg.Server.Host, "port", cfg.Server.AdminPort)
	return srv.Listen()
}

func newTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "trigger [listing|batch-create|batch-scrape|status-update]",
		Short:     "Run a single scheduler task once, outside its normal cadence",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"listing", "batch-create", "batch-scrape", "status-update"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrigger(args[0])
		},
	}
}

func runTrigger(task string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))
	ctx := context.Background()

	st, err := store.Connect(ctx, cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer st.Close(ctx)

	agent := agentclient.New(cfg.Agent.BaseURL, cfg.Agent.Token, cfg.Worker.SubmitTimeout)
	m := metrics.New()
	tasks := scheduler.NewTasks(st, agent, cfg.Scheduler, logger, m)

	var fn func(context.Context) error
	switch task {
	case "listing":
		fn = tasks.StartScrapingListing
	case "batch-create":
		fn = tasks.CreateProductBatches
	case "batch-scrape":
		fn = tasks.ScrapeBatch
	case "status-update":
		fn = tasks.FetchResults
	default:
		return fmt.Errorf("unknown task %q", task)
	}

	if err := fn(ctx); err != nil {
		return fmt.Errorf("run %s: %w", task, err)
	}
	logger.Info("trigger completed", "task", task)
	return nil
}
