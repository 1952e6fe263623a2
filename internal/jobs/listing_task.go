package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// defaultListingPageCap hard-caps how many pages a single listing task
// will walk when the runner's config leaves ListingPageCap unset,
// matching the original's `while url != None and page_count < 30`
// loop guard against runaway or circular pagination. The cap is a
// safety guard rather than a functional limit, so it is configurable
// via Worker.ListingPageCap rather than fixed.
const defaultListingPageCap = 30

// runListingTask walks a listing's pagination chain, collecting every
// product URL found along the way into a ListingResult. It tolerates
// duplicate URLs across pages (the reconciliation step in the
// scheduler's S4 task is what deduplicates against previously known
// ProductUrls), so a site whose pagination loops back on itself is
// bounded only by the page cap, not by a seen-set here.
func (r *Runner) runListingTask(ctx context.Context, job *model.Job, log *slog.Logger) {
	sc, domain, err := r.acquireScraper(job)
	if err != nil {
		r.failJob(ctx, job, log, err.Error())
		return
	}
	defer r.releaseScraper(domain, sc)

	pageCap := r.cfg.ListingPageCap
	if pageCap <= 0 {
		pageCap = defaultListingPageCap
	}

	var items []model.ListingItem
	rank := 1
	pagesScanned := 0
	currentURL := job.WebpageURL

	for currentURL != "" && pagesScanned < pageCap {
		pagination, err := sc.Pagination(ctx, currentURL)
		if err != nil {
			r.failJob(ctx, job, log, fmt.Sprintf("pagination failed at %s: %v", currentURL, err))
			return
		}

		urls, err := sc.ProductListings(ctx, currentURL, pagination.CurrentPage)
		if err != nil {
			r.failJob(ctx, job, log, fmt.Sprintf("listing extraction failed at %s: %v", currentURL, err))
			return
		}

		for _, u := range urls {
			items = append(items, model.ListingItem{URL: u, PageRank: rank})
			rank++
		}

		pagesScanned++
		currentURL = pagination.NextPageURL
	}

	result := model.ListingResult{Items: items, PageIndex: pagesScanned}
	log.Info("listing task finished", "pages_scanned", pagesScanned, "items", len(items))
	r.completeJob(ctx, job, log, result)
}
