// Package store persists the ingestor's and the agent's documents in
// MongoDB. Every collection manager follows the same shape: a thin
// wrapper around a *mongo.Collection with one method per access
// pattern, mirroring the original Python managers this was ported
// from rather than a generic repository abstraction.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wearlytic/fashionpipeline/internal/config"
)

// Collection names match the original managers' env-var defaults so
// an operator pointing this at an existing deployment's database sees
// the same collections.
const (
	collSources     = "data_ingestor_sources"
	collListings    = "data_ingestor_listings"
	collProductURLs = "data_ingestor_product_urls"
	collBatches     = "data_ingestor_batches"
	collProducts    = "data_ingestor_products"
	collStatuses    = "data_ingestor_statuses"
	collJobs        = "scraping_agent_jobs"
	collJobResults  = "scraping_agent_job_results"
)

// Store bundles every collection manager behind a single handle so
// callers construct one Store per process and pass it down instead of
// threading a *mongo.Database everywhere.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Sources     *SourceStore
	Listings    *ListingStore
	ProductURLs *ProductURLStore
	Batches     *BatchStore
	Products    *ProductStore
	Statuses    *StatusStore
	Jobs        *JobStore
	JobResults  *JobResultStore
}

// Connect dials MongoDB and wires up every collection manager. The
// caller owns the returned Store's lifetime and must call Close when
// done, typically on process shutdown.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.DBName)

	return &Store{
		client:      client,
		db:          db,
		Sources:     &SourceStore{coll: db.Collection(collSources)},
		Listings:    &ListingStore{coll: db.Collection(collListings)},
		ProductURLs: &ProductURLStore{coll: db.Collection(collProductURLs)},
		Batches:     &BatchStore{coll: db.Collection(collBatches)},
		Products:    &ProductStore{coll: db.Collection(collProducts)},
		Statuses:    &StatusStore{coll: db.Collection(collStatuses)},
		Jobs:        &JobStore{coll: db.Collection(collJobs)},
		JobResults:  &JobResultStore{coll: db.Collection(collJobResults)},
	}, nil
}

// Close disconnects the underlying MongoDB client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies connectivity, used by the /healthz deep check.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}
