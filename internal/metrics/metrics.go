// Package metrics hand-rolls a small Prometheus text-exposition
// counter set, in the same style as the teacher's internal/metrics
// package: plain maps guarded by a mutex rather than a metrics
// client library, since nothing in the example pack imports
// client_golang.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type counterKey struct {
	name   string
	labels string
}

// Registry accumulates named, labeled counters for both binaries:
// jobs submitted/completed/failed by type and priority on the agent,
// scheduler task runs/skips/errors, and scraper cache hits/misses/
// evictions.
type Registry struct {
	mu       sync.RWMutex
	counters map[counterKey]int64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{counters: make(map[counterKey]int64)}
}

func labelString(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, labels[k]))
	}
	return strings.Join(parts, ",")
}

func (r *Registry) inc(name string, labels map[string]string, delta int64) {
	key := counterKey{name: name, labels: labelString(labels)}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key] += delta
}

// JobStarted increments the agent's jobs-started counter for
// (type_page, priority).
func (r *Registry) JobStarted(typePage, priority string) {
	r.inc("agent_jobs_started_total", map[string]string{"type_page": typePage, "priority": priority}, 1)
}

// JobFinished increments the agent's jobs-finished counter for
// (type_page, priority, status).
func (r *Registry) JobFinished(typePage, priority, status string) {
	r.inc("agent_jobs_finished_total", map[string]string{"type_page": typePage, "priority": priority, "status": status}, 1)
}

// CacheHit increments the scraper-cache-hit counter.
func (r *Registry) CacheHit() {
	r.inc("agent_scraper_cache_hits_total", nil, 1)
}

// CacheMiss increments the scraper-cache-miss counter.
func (r *Registry) CacheMiss() {
	r.inc("agent_scraper_cache_misses_total", nil, 1)
}

// CacheEviction increments the scraper-cache-eviction counter.
func (r *Registry) CacheEviction() {
	r.inc("agent_scraper_cache_evictions_total", nil, 1)
}

// SchedulerRun increments the run counter for a named scheduler task.
func (r *Registry) SchedulerRun(task string) {
	r.inc("ingestor_scheduler_runs_total", map[string]string{"task": task}, 1)
}

// SchedulerSkip increments the skip counter for a named scheduler
// task, recorded when a tick finds the previous run still in flight.
func (r *Registry) SchedulerSkip(task string) {
	r.inc("ingestor_scheduler_skips_total", map[string]string{"task": task}, 1)
}

// SchedulerError increments the error counter for a named scheduler
// task.
func (r *Registry) SchedulerError(task string) {
	r.inc("ingestor_scheduler_errors_total", map[string]string{"task": task}, 1)
}

// HTTPRequest records one request's outcome, used by both HTTP
// surfaces' logging/metrics middleware.
func (r *Registry) HTTPRequest(surface, method, path string, status int) {
	r.inc("http_requests_total", map[string]string{
		"surface": surface,
		"method":  method,
		"path":    path,
		"status":  fmt.Sprintf("%d", status),
	}, 1)
}

// Export renders every counter as Prometheus text exposition format.
func (r *Registry) Export() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string][]counterKey)
	for k := range r.counters {
		byName[k.name] = append(byName[k.name], k)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		fmt.Fprintf(&sb, "# HELP %s %s\n", name, name)
		fmt.Fprintf(&sb, "# TYPE %s counter\n", name)

		keys := byName[name]
		sort.Slice(keys, func(i, j int) bool { return keys[i].labels < keys[j].labels })
		for _, k := range keys {
			if k.labels == "" {
				fmt.Fprintf(&sb, "%s %d\n", name, r.counters[k])
			} else {
				fmt.Fprintf(&sb, "%s{%s} %d\n", name, k.labels, r.counters[k])
			}
		}
	}
	return sb.String()
}
