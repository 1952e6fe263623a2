// Package model defines the documents shared by the ingestor and the
// scraping agent. Every type here is stored in MongoDB keyed by its
// string ID; each field carries a JSON tag and a BSON tag with the same
// name, except the ID, which is stored as the document's _id.
package model

import "time"

// Priority selects which agent queue a Job lands on.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the three recognized priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// TypePage selects which kind of scrape a Job performs.
type TypePage string

const (
	TypePageListing TypePage = "listing"
	TypePageProduct TypePage = "product"
)

// Valid reports whether t is a recognized page type.
func (t TypePage) Valid() bool {
	switch t {
	case TypePageListing, TypePageProduct:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of an agent Job.
type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// StatusState is the lifecycle state of an ingestor Status row.
type StatusState string

const (
	StatusProcessing StatusState = "processing"
	StatusCompleted  StatusState = "completed"
	StatusFailed     StatusState = "failed"
)

// IngestionType names which entity kind a Status is tracking.
type IngestionType string

const (
	IngestionListing IngestionType = "listing"
	IngestionProduct IngestionType = "product"
)

// Source is a website from which products are ingested.
type Source struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	BaseURL      string    `json:"base_url" bson:"base_url"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	Listings     []string  `json:"listings" bson:"listings"`
	ListingCount int       `json:"listing_count" bson:"listing_count"`
}

// Listing is a URL within a Source that paginates into product URLs.
type Listing struct {
	ID         string     `json:"id" bson:"_id"`
	SourceID   string     `json:"source_id" bson:"source_id"`
	URL        string     `json:"url" bson:"url"`
	Active     bool       `json:"active" bson:"active"`
	LastListed *time.Time `json:"last_listed,omitempty" bson:"last_listed"`
}

// ProductURL is a single product-page URL discovered from a Listing.
type ProductURL struct {
	ID        string  `json:"id" bson:"_id"`
	URL       string  `json:"url" bson:"url"`
	SourceID  string  `json:"source_id" bson:"source_id"`
	ListingID string  `json:"listing_id" bson:"listing_id"`
	PageIndex int     `json:"page_index" bson:"page_index"`
	Batched   bool    `json:"batched" bson:"batched"`
	BatchID   *string `json:"batch_id,omitempty" bson:"batch_id"`
}

// Batch is a bounded group of ProductUrls scheduled together for
// product-detail scraping.
type Batch struct {
	ID            string     `json:"id" bson:"_id"`
	URLs          []string   `json:"urls" bson:"urls"`
	BatchSize     int        `json:"batch_size" bson:"batch_size"`
	LastProcessed *time.Time `json:"last_processed,omitempty" bson:"last_processed"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
}

// Product is the canonical record produced by scraping a product page.
type Product struct {
	ID          string     `json:"id" bson:"_id"`
	URLID       string     `json:"url_id" bson:"url_id"`
	Title       string     `json:"title,omitempty" bson:"title,omitempty"`
	Price       *float64   `json:"price,omitempty" bson:"price,omitempty"`
	Category    string     `json:"category,omitempty" bson:"category,omitempty"`
	Gender      string     `json:"gender,omitempty" bson:"gender,omitempty"`
	URL         string     `json:"url" bson:"url"`
	ImageURL    string     `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Colors      []string   `json:"colors,omitempty" bson:"colors,omitempty"`
	Sizes       []string   `json:"sizes,omitempty" bson:"sizes,omitempty"`
	Material    string     `json:"material,omitempty" bson:"material,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Rating      *float64   `json:"rating,omitempty" bson:"rating,omitempty"`
	ReviewCount *int       `json:"review_count,omitempty" bson:"review_count,omitempty"`
	Processed   bool       `json:"processed" bson:"processed"`
	ScrapedAt   *time.Time `json:"scraped_at,omitempty" bson:"scraped_at,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
	PageIndex   int        `json:"page_index" bson:"page_index"`
	PageContent string     `json:"page_content,omitempty" bson:"page_content,omitempty"`
}

// Status is the ingestor's tracking row for an outstanding agent Job.
type Status struct {
	ID            string        `json:"id" bson:"_id"`
	IngestionType IngestionType `json:"ingestion_type" bson:"ingestion_type"`
	JobID         string        `json:"job_id" bson:"job_id"`
	EntityID      string        `json:"entity_id" bson:"entity_id"`
	Status        StatusState   `json:"status" bson:"status"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}

// Job is a unit of work on the agent (listing or product scrape).
type Job struct {
	ID           string     `json:"job_id" bson:"_id"`
	WebpageURL   string     `json:"webpage_url" bson:"webpage_url"`
	Priority     Priority   `json:"priority" bson:"priority"`
	TypePage     TypePage   `json:"type_page" bson:"type_page"`
	Status       JobStatus  `json:"status" bson:"status"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
}

// ListingItem is one URL discovered during a listing walk.
type ListingItem struct {
	URL      string `json:"url" bson:"url"`
	PageRank int    `json:"page_rank" bson:"page_rank"`
}

// ListingResult is the JobResult payload for a listing job.
type ListingResult struct {
	Items     []ListingItem `json:"items" bson:"items"`
	PageIndex int           `json:"page_index" bson:"page_index"`
}

// JobResult is the terminal outcome of a Job.
type JobResult struct {
	JobID        string      `json:"job_id" bson:"_id"`
	Result       interface{} `json:"result" bson:"result"`
	Status       JobStatus   `json:"status" bson:"status"`
	CompletedAt  time.Time   `json:"completed_at" bson:"completed_at"`
	ErrorMessage *string     `json:"error_message,omitempty" bson:"error_message,omitempty"`
}
