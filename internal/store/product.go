package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// ProductStore is the CRUD manager for Product documents.
type ProductStore struct {
	coll *mongo.Collection
}

// Create inserts a new Product.
func (s *ProductStore) Create(ctx context.Context, p *model.Product) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product %s: %w", p.ID, err)
	}
	return nil
}

// Get fetches a Product by ID.
func (s *ProductStore) Get(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

// ApplyUpdate additively updates a Product: only fields present as
// non-nil/non-empty in changes are $set, so a partial scrape result
// never clobbers a field a previous, more complete scrape already
// populated. changes uses bson field names as keys.
func (s *ProductStore) ApplyUpdate(ctx context.Context, id string, changes bson.M) error {
	if len(changes) == 0 {
		return nil
	}
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": changes},
	)
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update product %s: %w", id, ErrNotFound)
	}
	return nil
}

// MarkProcessed flags a Product as reconciled and stamps
// processed_at, mirroring the original's mark_product_processed.
func (s *ProductStore) MarkProcessed(ctx context.Context, id string, now time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"processed": true, "processed_at": now}},
	)
	if err != nil {
		return fmt.Errorf("mark product %s processed: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("mark product %s processed: %w", id, ErrNotFound)
	}
	return nil
}

// Unprocessed returns every Product not yet reconciled.
func (s *ProductStore) Unprocessed(ctx context.Context) ([]model.Product, error) {
	cur, err := s.coll.Find(ctx, bson.M{"processed": false})
	if err != nil {
		return nil, fmt.Errorf("list unprocessed products: %w", err)
	}
	defer cur.Close(ctx)

	var out []model.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return out, nil
}

// BuildAdditiveChanges returns the $set document for updating an
// existing product with a freshly scraped one, keeping only fields
// the new scrape actually populated.
func BuildAdditiveChanges(scraped *model.Product) bson.M {
	changes := bson.M{}
	if scraped.Title != "" {
		changes["title"] = scraped.Title
	}
	if scraped.Price != nil {
		changes["price"] = *scraped.Price
	}
	if scraped.Category != "" {
		changes["category"] = scraped.Category
	}
	if scraped.Gender != "" {
		changes["gender"] = scraped.Gender
	}
	if scraped.ImageURL != "" {
		changes["image_url"] = scraped.ImageURL
	}
	if len(scraped.Colors) > 0 {
		changes["colors"] = scraped.Colors
	}
	if len(scraped.Sizes) > 0 {
		changes["sizes"] = scraped.Sizes
	}
	if scraped.Material != "" {
		changes["material"] = scraped.Material
	}
	if scraped.Description != "" {
		changes["description"] = scraped.Description
	}
	if scraped.Rating != nil {
		changes["rating"] = *scraped.Rating
	}
	if scraped.ReviewCount != nil {
		changes["review_count"] = *scraped.ReviewCount
	}
	if scraped.PageContent != "" {
		changes["page_content"] = scraped.PageContent
	}
	if scraped.ScrapedAt != nil {
		changes["scraped_at"] = *scraped.ScrapedAt
	}
	return changes
}
