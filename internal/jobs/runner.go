// Package jobs implements the scraping agent's worker pool: a
// bounded-concurrency loop that dequeues job IDs from the priority
// queue and runs the listing or product task matching each job's
// type_page.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/model"
	"github.com/wearlytic/fashionpipeline/internal/queue"
	"github.com/wearlytic/fashionpipeline/internal/scraper"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

// Runner polls the priority queue and dispatches jobs to the listing
// or product task, bounding concurrency with a buffered-channel
// semaphore the same way the teacher's jobs.Runner bounds concurrent
// DB-job execution.
type Runner struct {
	cfg      config.WorkerConfig
	store    *store.Store
	queue    *queue.Queue
	registry *scraper.Registry
	cache    *scraper.Cache
	logger   *slog.Logger
	metrics  *metrics.Registry
}

// NewRunner constructs a Runner.
func NewRunner(cfg config.WorkerConfig, st *store.Store, q *queue.Queue, reg *scraper.Registry, cache *scraper.Cache, logger *slog.Logger, m *metrics.Registry) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, store: st, queue: q, registry: reg, cache: cache, logger: logger, metrics: m}
}

// Start runs the worker loop until ctx is cancelled. Callers run this
// in its own goroutine and keep the process alive.
func (r *Runner) Start(ctx context.Context) {
	concurrency := r.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	sem := make(chan struct{}, concurrency)

	popTimeout := r.cfg.PollInterval
	if popTimeout <= 0 {
		popTimeout = 2 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		case sem <- struct{}{}:
		}

		jobID, typePage, err := r.queue.Pop(ctx, popTimeout)
		if err != nil {
			<-sem
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("queue pop failed", "error", err)
			continue
		}
		if jobID == "" {
			<-sem
			continue
		}

		go func() {
			defer func() { <-sem }()
			r.dispatch(ctx, jobID, typePage)
		}()
	}
}

// dispatch routes a dequeued job ID to the task matching its
// type_page, loading the Job document to recover its URL and
// priority.
func (r *Runner) dispatch(ctx context.Context, jobID string, typePage model.TypePage) {
	job, err := r.store.Jobs.Get(ctx, jobID)
	if err != nil || job == nil {
		r.logger.Error("job lookup failed", "job_id", jobID, "error", err)
		return
	}

	log := r.logger.With("job_id", jobID, "type_page", typePage, "priority", job.Priority)

	if err := r.store.Jobs.SetProcessing(ctx, jobID); err != nil {
		log.Error("failed to mark job processing", "error", err)
		return
	}

	switch typePage {
	case model.TypePageListing:
		r.runListingTask(ctx, job, log)
	case model.TypePageProduct:
		r.runProductTask(ctx, job, log)
	default:
		r.failJob(ctx, job, log, "UNKNOWN_TYPE_PAGE: "+string(typePage))
	}
}

// failJob records a terminal failure for job: a JobResult with an
// error message, the Job marked failed, and the job's scraper (if it
// has one cached under Config) not touched here — callers that
// obtained a scraper from the cache are responsible for returning it.
func (r *Runner) failJob(ctx context.Context, job *model.Job, log *slog.Logger, reason string) {
	now := time.Now().UTC()
	_ = r.store.JobResults.Upsert(ctx, &model.JobResult{
		JobID:        job.ID,
		Result:       nil,
		Status:       model.JobFailed,
		CompletedAt:  now,
		ErrorMessage: &reason,
	})
	if err := r.store.Jobs.Fail(ctx, job.ID, now, reason); err != nil {
		log.Error("failed to mark job failed", "error", err)
	}
	r.metrics.JobFinished(string(job.TypePage), string(job.Priority), string(model.JobFailed))
	log.Warn("job failed", "reason", reason)
}

// completeJob records a successful JobResult and marks the Job
// completed.
func (r *Runner) completeJob(ctx context.Context, job *model.Job, log *slog.Logger, result interface{}) {
	now := time.Now().UTC()
	if err := r.store.JobResults.Upsert(ctx, &model.JobResult{
		JobID:       job.ID,
		Result:      result,
		Status:      model.JobCompleted,
		CompletedAt: now,
	}); err != nil {
		log.Error("failed to write job result", "error", err)
	}
	if err := r.store.Jobs.Complete(ctx, job.ID, now); err != nil {
		log.Error("failed to mark job completed", "error", err)
	}
	r.metrics.JobFinished(string(job.TypePage), string(job.Priority), string(model.JobCompleted))
	log.Info("job completed")
}

// acquireScraper returns a cached Scraper for the job's URL if one is
// available, otherwise builds a fresh one from the registry. Either
// way the caller must return it to the cache via releaseScraper once
// done.
func (r *Runner) acquireScraper(job *model.Job) (scraper.Scraper, string, error) {
	domain, err := scraper.ExtractDomainForCache(job.WebpageURL)
	if err != nil {
		return nil, "", err
	}

	if sc := r.cache.Get(domain); sc != nil {
		r.metrics.CacheHit()
		return sc, domain, nil
	}
	r.metrics.CacheMiss()

	factory, err := r.registry.FactoryForURL(job.WebpageURL)
	if err != nil {
		return nil, domain, err
	}
	sc, err := factory(r.loaderConfig())
	if err != nil {
		return nil, domain, err
	}
	return sc, domain, nil
}

// releaseScraper returns sc to the cache under domain, evicting and
// closing the oldest entry if the cache is now over capacity.
func (r *Runner) releaseScraper(domain string, sc scraper.Scraper) {
	r.cache.Insert(domain, sc)
}

// loaderConfig builds the scraper.Config every factory receives. All
// registered plug-ins in this repo use RequestLoader; sites that need
// browser rendering register a factory that closes over a
// BrowserLoader or BrowserInfiniteScrollLoader instead.
func (r *Runner) loaderConfig() scraper.Config {
	return scraper.Config{
		Loader:  scraper.NewRequestLoader(10*time.Second, "Mozilla/5.0 (compatible; WearlyticBot/1.0)", r.cfg.RespectRobots),
		Timeout: 10,
	}
}
