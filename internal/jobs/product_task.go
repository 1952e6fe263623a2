package jobs

import (
	"context"
	"log/slog"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// runProductTask scrapes a single product page and records it as the
// Job's result.
func (r *Runner) runProductTask(ctx context.Context, job *model.Job, log *slog.Logger) {
	sc, domain, err := r.acquireScraper(job)
	if err != nil {
		r.failJob(ctx, job, log, err.Error())
		return
	}
	defer r.releaseScraper(domain, sc)

	product, err := sc.ProductDetails(ctx, job.WebpageURL)
	if err != nil {
		r.failJob(ctx, job, log, err.Error())
		return
	}

	log.Info("product task finished", "title", product.Title)
	r.completeJob(ctx, job, log, product)
}
