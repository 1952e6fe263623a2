// Package scheduler runs the ingestor's four periodic control-plane
// tasks (S1-S4) and exposes them as a shared Tasks struct so both the
// ticker loop and the admin trigger endpoints invoke exactly the same
// code path.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wearlytic/fashionpipeline/internal/agentclient"
	"github.com/wearlytic/fashionpipeline/internal/config"
	"github.com/wearlytic/fashionpipeline/internal/metrics"
	"github.com/wearlytic/fashionpipeline/internal/model"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

// Tasks implements S1-S4 against the shared store and agent client.
type Tasks struct {
	store   *store.Store
	agent   *agentclient.Client
	cfg     config.SchedulerConfig
	logger  *slog.Logger
	metrics *metrics.Registry
}

// NewTasks constructs a Tasks.
func NewTasks(st *store.Store, agent *agentclient.Client, cfg config.SchedulerConfig, logger *slog.Logger, m *metrics.Registry) *Tasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tasks{store: st, agent: agent, cfg: cfg, logger: logger, metrics: m}
}

// StartScrapingListing is S1: for each Source, dispatch a scrape of
// its oldest (least-recently-listed) active Listing.
func (t *Tasks) StartScrapingListing(ctx context.Context) error {
	listings, err := t.store.Listings.OldestPerSource(ctx)
	if err != nil {
		return fmt.Errorf("load oldest listings per source: %w", err)
	}
	if len(listings) == 0 {
		t.logger.Info("S1: no listings found to scrape")
		return nil
	}

	for _, listing := range listings {
		log := t.logger.With("task", "start_scraping_listing", "listing_id", listing.ID, "url", listing.URL)

		jobID, err := t.agent.Submit(ctx, agentclient.SubmitRequest{
			WebpageURL: listing.URL,
			Priority:   model.PriorityLow,
			TypePage:   model.TypePageListing,
		})
		if err != nil {
			log.Error("failed to submit listing scrape", "error", err)
			continue
		}
		log.Info("listing scrape submitted", "job_id", jobID)

		status := &model.Status{
			ID:            uuid.NewString(),
			IngestionType: model.IngestionListing,
			JobID:         jobID,
			EntityID:      listing.ID,
			Status:        model.StatusProcessing,
			CreatedAt:     time.Now().UTC(),
		}
		if err := t.store.Statuses.Create(ctx, status); err != nil {
			log.Error("failed to record status", "error", err)
		}
	}
	return nil
}

// CreateProductBatches is S2: fill the oldest Batch with remaining
// capacity first, then create new batches in MaxBatchSize-sized chunks for
// whatever unbatched ProductUrls remain.
func (t *Tasks) CreateProductBatches(ctx context.Context) error {
	unbatched, err := t.store.ProductURLs.ListUnbatched(ctx, 0)
	if err != nil {
		return fmt.Errorf("list unbatched product urls: %w", err)
	}
	if len(unbatched) == 0 {
		t.logger.Info("S2: no unbatched product urls found")
		return nil
	}

	capacity := t.cfg.MaxBatchSize
	remaining := unbatched

	if existing, err := t.store.Batches.WithSpace(ctx, capacity); err != nil {
		return fmt.Errorf("find batch with space: %w", err)
	} else if existing != nil {
		space := capacity - existing.BatchSize
		if space > len(remaining) {
			space = len(remaining)
		}
		for _, u := range remaining[:space] {
			if err := t.store.Batches.AddURL(ctx, existing.ID, u.ID); err != nil {
				t.logger.Error("S2: failed to add url to existing batch", "batch_id", existing.ID, "url_id", u.ID, "error", err)
				continue
			}
			if err := t.store.ProductURLs.MarkBatched(ctx, u.ID, existing.ID); err != nil {
				t.logger.Error("S2: failed to mark url batched", "url_id", u.ID, "error", err)
			}
		}
		remaining = remaining[space:]
	}

	for len(remaining) > 0 {
		n := capacity
		if n > len(remaining) {
			n = len(remaining)
		}
		chunk := remaining[:n]
		remaining = remaining[n:]

		batch := &model.Batch{
			ID:        uuid.NewString(),
			BatchSize: len(chunk),
			CreatedAt: time.Now().UTC(),
		}
		for _, u := range chunk {
			batch.URLs = append(batch.URLs, u.ID)
		}

		if err := t.store.Batches.Create(ctx, batch); err != nil {
			t.logger.Error("S2: failed to create batch", "error", err)
			continue
		}
		for _, u := range chunk {
			if err := t.store.ProductURLs.MarkBatched(ctx, u.ID, batch.ID); err != nil {
				t.logger.Error("S2: failed to mark url batched", "url_id", u.ID, "error", err)
			}
		}
		t.logger.Info("S2: created batch", "batch_id", batch.ID, "size", batch.BatchSize)
	}

	return nil
}

// ScrapeBatch is S3: dispatch a high-priority product scrape for
// every URL in each of the oldest MaxBatchesToProcess batches, then
// stamp each batch as processed.
func (t *Tasks) ScrapeBatch(ctx context.Context) error {
	batches, err := t.store.Batches.TopNByAge(ctx, t.cfg.MaxBatchesToProcess)
	if err != nil {
		return fmt.Errorf("list top batches: %w", err)
	}

	for _, batch := range batches {
		log := t.logger.With("task", "scrape_batch", "batch_id", batch.ID)
		if len(batch.URLs) == 0 {
			log.Warn("batch has no urls")
			continue
		}
		log.Info("processing batch", "urls", len(batch.URLs))

		for _, urlID := range batch.URLs {
			productURL, err := t.store.ProductURLs.Get(ctx, urlID)
			if err != nil || productURL == nil {
				log.Warn("product url not found", "url_id", urlID)
				continue
			}

			jobID, err := t.agent.Submit(ctx, agentclient.SubmitRequest{
				WebpageURL: productURL.URL,
				Priority:   model.PriorityHigh,
				TypePage:   model.TypePageProduct,
			})
			if err != nil {
				log.Error("failed to submit product scrape", "url_id", urlID, "error", err)
				continue
			}

			status := &model.Status{
				ID:            uuid.NewString(),
				IngestionType: model.IngestionProduct,
				JobID:         jobID,
				EntityID:      urlID,
				Status:        model.StatusProcessing,
				CreatedAt:     time.Now().UTC(),
			}
			if err := t.store.Statuses.Create(ctx, status); err != nil {
				log.Error("failed to record status", "error", err)
			}
		}

		now := time.Now().UTC()
		if err := t.store.Batches.SetLastProcessed(ctx, batch.ID, now); err != nil {
			log.Error("failed to stamp batch last_processed", "error", err)
		}
	}

	return nil
}

// FetchResults is S4: poll every processing Status, pulling the
// matching Job's result once it reaches a terminal state and
// reconciling it into the listing or product tables.
func (t *Tasks) FetchResults(ctx context.Context) error {
	statuses, err := t.store.Statuses.ListByState(ctx, model.StatusProcessing)
	if err != nil {
		return fmt.Errorf("list processing statuses: %w", err)
	}

	for _, status := range statuses {
		t.reconcileOne(ctx, status)
	}
	return nil
}

func (t *Tasks) reconcileOne(ctx context.Context, status model.Status) {
	log := t.logger.With("task", "fetch_results", "status_id", status.ID, "job_id", status.JobID)

	jobStatus, err := t.agent.Status(ctx, status.JobID)
	if err != nil {
		log.Error("failed to fetch job status", "error", err)
		t.failStatus(ctx, status.ID, log)
		return
	}

	switch jobStatus.Status {
	case model.JobCompleted:
		t.reconcileCompleted(ctx, status, log)
	case model.JobFailed:
		t.failStatus(ctx, status.ID, log)
	default:
		// Still processing on the agent; leave the Status as-is for the
		// next tick.
	}
}

func (t *Tasks) reconcileCompleted(ctx context.Context, status model.Status, log *slog.Logger) {
	result, err := t.agent.Result(ctx, status.JobID)
	if err != nil || result == nil {
		log.Error("failed to fetch job result", "error", err)
		t.failStatus(ctx, status.ID, log)
		return
	}

	var reconcileErr error
	switch status.IngestionType {
	case model.IngestionListing:
		reconcileErr = t.reconcileListing(ctx, status, result)
	case model.IngestionProduct:
		reconcileErr = t.reconcileProduct(ctx, status, result)
	default:
		reconcileErr = fmt.Errorf("unknown ingestion_type %q", status.IngestionType)
	}

	if reconcileErr != nil {
		log.Error("reconciliation failed", "error", reconcileErr)
		t.failStatus(ctx, status.ID, log)
		return
	}

	if err := t.store.Statuses.SetState(ctx, status.ID, model.StatusCompleted); err != nil {
		log.Error("failed to mark status completed", "error", err)
	}
}

func (t *Tasks) reconcileListing(ctx context.Context, status model.Status, result *agentclient.ResultResponse) error {
	listing, err := t.store.Listings.Get(ctx, status.EntityID)
	if err != nil {
		return fmt.Errorf("load listing %s: %w", status.EntityID, err)
	}
	if listing == nil {
		return fmt.Errorf("listing %s not found", status.EntityID)
	}

	var listingResult model.ListingResult
	if err := json.Unmarshal(result.Result, &listingResult); err != nil {
		return fmt.Errorf("decode listing result: %w", err)
	}

	now := time.Now().UTC()
	if err := t.store.Listings.SetLastListed(ctx, listing.ID, now); err != nil {
		return fmt.Errorf("stamp listing last_listed: %w", err)
	}

	for _, item := range listingResult.Items {
		exists, err := t.store.ProductURLs.ExistsByURL(ctx, item.URL)
		if err != nil {
			t.logger.Error("S4: failed checking product url existence", "url", item.URL, "error", err)
			continue
		}
		if exists {
			continue
		}

		pu := &model.ProductURL{
			ID:        uuid.NewString(),
			URL:       item.URL,
			SourceID:  listing.SourceID,
			ListingID: listing.ID,
			PageIndex: item.PageRank,
		}
		if err := t.store.ProductURLs.Create(ctx, pu); err != nil {
			t.logger.Error("S4: failed to create product url", "url", item.URL, "error", err)
		}
	}
	return nil
}

func (t *Tasks) reconcileProduct(ctx context.Context, status model.Status, result *agentclient.ResultResponse) error {
	var scraped model.Product
	if err := json.Unmarshal(result.Result, &scraped); err != nil {
		return fmt.Errorf("decode product result: %w", err)
	}
	if scraped.ID == "" {
		return fmt.Errorf("scraped product result carries no id")
	}

	productURL, err := t.store.ProductURLs.Get(ctx, status.EntityID)
	if err != nil {
		return fmt.Errorf("load product url %s: %w", status.EntityID, err)
	}
	if productURL == nil {
		return fmt.Errorf("product url %s not found", status.EntityID)
	}

	// Looked up by the scraped product's own id, not by ProductUrl: a
	// product id is owned by no single ProductUrl, so two different
	// ProductUrls that resolve to the same id land on the same Product.
	existing, err := t.store.Products.Get(ctx, scraped.ID)
	if err != nil {
		return fmt.Errorf("load existing product %s: %w", scraped.ID, err)
	}

	if existing != nil {
		changes := store.BuildAdditiveChanges(&scraped)
		if err := t.store.Products.ApplyUpdate(ctx, existing.ID, changes); err != nil {
			return fmt.Errorf("apply additive product update: %w", err)
		}
		return nil
	}

	scraped.URLID = productURL.ID
	scraped.PageIndex = productURL.PageIndex
	scraped.Processed = false
	if err := t.store.Products.Create(ctx, &scraped); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (t *Tasks) failStatus(ctx context.Context, statusID string, log *slog.Logger) {
	if err := t.store.Statuses.SetState(ctx, statusID, model.StatusFailed); err != nil {
		log.Error("failed to mark status failed", "error", err)
	}
}
