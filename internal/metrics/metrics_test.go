package metrics

import (
	"strings"
	"testing"
)

func TestJobLifecycleMetrics(t *testing.T) {
	r := New()
	r.JobStarted("product", "high")
	r.JobFinished("product", "high", "completed")

	out := r.Export()
	if !strings.Contains(out, `agent_jobs_started_total{priority="high",type_page="product"} 1`) {
		t.Fatalf("expected jobs_started metric, got:\n%s", out)
	}
	if !strings.Contains(out, `agent_jobs_finished_total{priority="high",status="completed",type_page="product"} 1`) {
		t.Fatalf("expected jobs_finished metric, got:\n%s", out)
	}
}

func TestCacheMetricsAccumulate(t *testing.T) {
	r := New()
	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()
	r.CacheEviction()

	out := r.Export()
	if !strings.Contains(out, "agent_scraper_cache_hits_total 2") {
		t.Fatalf("expected two cache hits, got:\n%s", out)
	}
	if !strings.Contains(out, "agent_scraper_cache_misses_total 1") {
		t.Fatalf("expected one cache miss, got:\n%s", out)
	}
	if !strings.Contains(out, "agent_scraper_cache_evictions_total 1") {
		t.Fatalf("expected one cache eviction, got:\n%s", out)
	}
}

func TestSchedulerMetricsByTask(t *testing.T) {
	r := New()
	r.SchedulerRun("scrape_batch")
	r.SchedulerSkip("scrape_batch")
	r.SchedulerError("fetch_results")

	out := r.Export()
	if !strings.Contains(out, `ingestor_scheduler_runs_total{task="scrape_batch"} 1`) {
		t.Fatalf("expected scheduler run metric, got:\n%s", out)
	}
	if !strings.Contains(out, `ingestor_scheduler_skips_total{task="scrape_batch"} 1`) {
		t.Fatalf("expected scheduler skip metric, got:\n%s", out)
	}
	if !strings.Contains(out, `ingestor_scheduler_errors_total{task="fetch_results"} 1`) {
		t.Fatalf("expected scheduler error metric, got:\n%s", out)
	}
}

func TestHTTPRequestMetricLabelsSortedAlphabetically(t *testing.T) {
	r := New()
	r.HTTPRequest("agent", "POST", "/scrape", 200)

	out := r.Export()
	if !strings.Contains(out, `http_requests_total{method="POST",path="/scrape",status="200",surface="agent"} 1`) {
		t.Fatalf("expected http_requests_total with alphabetically sorted labels, got:\n%s", out)
	}
}
