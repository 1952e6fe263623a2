package scheduler

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// taskFunc is any of Tasks' S1-S4 methods.
type taskFunc func(ctx context.Context) error

// namedTask pairs a task with its firing schedule and a non-overlap
// guard, so a tick arriving while the previous run is still in flight
// is skipped and logged rather than queued or run concurrently.
//
// A task with a non-empty fireHours fires at those wall-clock hours
// (in the Scheduler's configured timezone) every day, mirroring the
// original's crontab(hour=...) Celery Beat entries. A task with
// fireHours empty instead fires on a plain fixed interval.
type namedTask struct {
	name      string
	fn        taskFunc
	fireHours []int
	interval  time.Duration
	running   atomic.Bool
}

// Scheduler drives the four named tasks, grounded in
// Leslie-SSS-apple-price's Scheduler.Start (run immediately, then loop
// until Stop), generalized to four task kinds sharing one Tasks struct
// and, for the three cron-style tasks, anchored to wall-clock hours in
// a fixed timezone rather than counted from process start.
type Scheduler struct {
	tasks  *Tasks
	named  []*namedTask
	logger *slog.Logger
	loc    *time.Location
	cancel context.CancelFunc
}

// New builds a Scheduler wiring S1-S4 to their spec-mandated cadences.
func New(tasks *Tasks, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := time.LoadLocation(tasks.cfg.Timezone)
	if err != nil {
		logger.Warn("invalid scheduler timezone, falling back to UTC", "timezone", tasks.cfg.Timezone, "error", err)
		loc = time.UTC
	}

	s := &Scheduler{tasks: tasks, logger: logger, loc: loc}
	s.named = []*namedTask{
		{name: "start_scraping_listing", fn: tasks.StartScrapingListing, fireHours: tasks.cfg.ListingFireHours},
		{name: "create_product_batches", fn: tasks.CreateProductBatches, fireHours: tasks.cfg.BatchCreateFireHours},
		{name: "scrape_batch", fn: tasks.ScrapeBatch, fireHours: tasks.cfg.BatchScrapeFireHours},
		{name: "fetch_results", fn: tasks.FetchResults, interval: tasks.cfg.FetchResultsInterval},
	}
	return s
}

// Start launches one goroutine per task and returns immediately; call
// Stop to end all loops. The interval-driven task (fetch_results) also
// runs once immediately so a freshly deployed ingestor doesn't wait a
// full cadence before first firing; cron-anchored tasks wait for their
// next configured hour, matching Celery Beat's own behavior of never
// firing outside its schedule.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, nt := range s.named {
		nt := nt
		if len(nt.fireHours) == 0 {
			go func() {
				s.runOnce(runCtx, nt)
				s.loopInterval(runCtx, nt)
			}()
			continue
		}
		go s.loopCron(runCtx, nt)
	}
}

// Stop ends every task's loop.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Scheduler) loopInterval(ctx context.Context, nt *namedTask) {
	ticker := time.NewTicker(nt.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, nt)
		}
	}
}

// loopCron sleeps until nt's next configured fire hour, runs the task,
// then recomputes the next occurrence. Recomputing from wall-clock
// time on every iteration (rather than accumulating a fixed-duration
// ticker) means a restart lands on the same daily hours regardless of
// what time the process happened to come back up.
func (s *Scheduler) loopCron(ctx context.Context, nt *namedTask) {
	for {
		wait := time.Until(nextFireTime(time.Now().In(s.loc), nt.fireHours, s.loc))
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runOnce(ctx, nt)
		}
	}
}

// nextFireTime returns the next instant strictly after now, in loc,
// that matches one of hours:00:00; a now that falls exactly on a fire
// hour yields the following occurrence.
func nextFireTime(now time.Time, hours []int, loc *time.Location) time.Time {
	best := time.Time{}
	for _, h := range hours {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, loc)
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		if best.IsZero() || candidate.Before(best) {
			best = candidate
		}
	}
	return best
}

// runOnce executes nt.fn unless a previous run is still in flight.
func (s *Scheduler) runOnce(ctx context.Context, nt *namedTask) {
	if !nt.running.CompareAndSwap(false, true) {
		s.logger.Warn("scheduler tick skipped, previous run still in flight", "task", nt.name)
		s.tasks.metrics.SchedulerSkip(nt.name)
		return
	}
	defer nt.running.Store(false)

	s.tasks.metrics.SchedulerRun(nt.name)
	start := time.Now()
	if err := nt.fn(ctx); err != nil {
		s.logger.Error("scheduler task failed", "task", nt.name, "error", err)
		s.tasks.metrics.SchedulerError(nt.name)
		return
	}
	s.logger.Info("scheduler task completed", "task", nt.name, "duration", time.Since(start))
}
