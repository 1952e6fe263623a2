package httpadmin

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/wearlytic/fashionpipeline/internal/model"
	"github.com/wearlytic/fashionpipeline/internal/store"
)

// CreateSourceRequest is the body for POST /api/sources.
type CreateSourceRequest struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

func (s *Server) createSource(c *fiber.Ctx) error {
	var req CreateSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}
	if req.Name == "" || req.BaseURL == "" {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_SOURCE", "name and base_url are required")
	}

	src := &model.Source{
		ID:        uuid.NewString(),
		Name:      req.Name,
		BaseURL:   req.BaseURL,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Sources.Create(c.Context(), src); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_CREATE_FAILED", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(src)
}

func (s *Server) listSources(c *fiber.Ctx) error {
	sources, err := s.store.Sources.List(c.Context())
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_LIST_FAILED", err.Error())
	}
	return c.JSON(sources)
}

func (s *Server) getSource(c *fiber.Ctx) error {
	src, err := s.store.Sources.Get(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_LOOKUP_FAILED", err.Error())
	}
	if src == nil {
		return errorResponse(c, fiber.StatusNotFound, "SOURCE_NOT_FOUND", "no source with that id")
	}
	return c.JSON(src)
}

// UpdateSourceRequest is the body for PATCH /api/sources/:id. Only
// non-nil fields are applied.
type UpdateSourceRequest struct {
	Name    *string `json:"name"`
	BaseURL *string `json:"base_url"`
	Active  *bool   `json:"active"`
}

func (s *Server) updateSource(c *fiber.Ctx) error {
	var req UpdateSourceRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}

	changes := bson.M{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.BaseURL != nil {
		changes["base_url"] = *req.BaseURL
	}
	if req.Active != nil {
		changes["active"] = *req.Active
	}

	id := c.Params("id")
	if err := s.store.Sources.Update(c.Context(), id, changes); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "SOURCE_NOT_FOUND", "no source with that id")
		}
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_UPDATE_FAILED", err.Error())
	}

	src, err := s.store.Sources.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_LOOKUP_FAILED", err.Error())
	}
	return c.JSON(src)
}

// deleteSource removes a Source, refusing when it still owns Listings
// per the delete-cascade invariant: Listings must be removed first so
// a delete never leaves them orphaned.
func (s *Server) deleteSource(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := s.store.Sources.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return errorResponse(c, fiber.StatusNotFound, "SOURCE_NOT_FOUND", "no source with that id")
		case errors.Is(err, store.ErrSourceHasListings):
			return errorResponse(c, fiber.StatusConflict, "SOURCE_HAS_LISTINGS", "remove the source's listings before deleting it")
		default:
			return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_DELETE_FAILED", err.Error())
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CreateListingRequest is the body for POST /api/sources/:id/listings.
type CreateListingRequest struct {
	URL string `json:"url"`
}

func (s *Server) createListing(c *fiber.Ctx) error {
	sourceID := c.Params("id")
	src, err := s.store.Sources.Get(c.Context(), sourceID)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "SOURCE_LOOKUP_FAILED", err.Error())
	}
	if src == nil {
		return errorResponse(c, fiber.StatusNotFound, "SOURCE_NOT_FOUND", "no source with that id")
	}

	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}
	if req.URL == "" {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_LISTING", "url is required")
	}

	listing := &model.Listing{
		ID:       uuid.NewString(),
		SourceID: sourceID,
		URL:      req.URL,
		Active:   src.Active,
	}
	if err := s.store.Listings.Create(c.Context(), listing); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_CREATE_FAILED", err.Error())
	}
	if err := s.store.Sources.AddListing(c.Context(), sourceID, listing.ID); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_LINK_FAILED", err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (s *Server) listListings(c *fiber.Ctx) error {
	listings, err := s.store.Listings.ListBySource(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_LIST_FAILED", err.Error())
	}
	return c.JSON(listings)
}

func (s *Server) getListing(c *fiber.Ctx) error {
	listing, err := s.store.Listings.Get(c.Context(), c.Params("listingID"))
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_LOOKUP_FAILED", err.Error())
	}
	if listing == nil {
		return errorResponse(c, fiber.StatusNotFound, "LISTING_NOT_FOUND", "no listing with that id")
	}
	return c.JSON(listing)
}

// UpdateListingRequest is the body for PATCH
// /api/sources/:id/listings/:listingID. Only non-nil fields are
// applied.
type UpdateListingRequest struct {
	URL    *string `json:"url"`
	Active *bool   `json:"active"`
}

func (s *Server) updateListing(c *fiber.Ctx) error {
	var req UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}

	changes := bson.M{}
	if req.URL != nil {
		changes["url"] = *req.URL
	}
	if req.Active != nil {
		changes["active"] = *req.Active
	}

	id := c.Params("listingID")
	if err := s.store.Listings.Update(c.Context(), id, changes); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "LISTING_NOT_FOUND", "no listing with that id")
		}
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_UPDATE_FAILED", err.Error())
	}

	listing, err := s.store.Listings.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_LOOKUP_FAILED", err.Error())
	}
	return c.JSON(listing)
}

// deleteListing removes a Listing and unlinks it from its Source.
func (s *Server) deleteListing(c *fiber.Ctx) error {
	sourceID := c.Params("id")
	listingID := c.Params("listingID")

	if err := s.store.Listings.Delete(c.Context(), listingID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorResponse(c, fiber.StatusNotFound, "LISTING_NOT_FOUND", "no listing with that id")
		}
		return errorResponse(c, fiber.StatusInternalServerError, "LISTING_DELETE_FAILED", err.Error())
	}
	if err := s.store.Sources.RemoveListing(c.Context(), sourceID, listingID); err != nil {
		s.logger.Error("failed to unlink deleted listing from source", "source_id", sourceID, "listing_id", listingID, "error", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TriggerResponse is the body returned by every /api/trigger-* endpoint.
type TriggerResponse struct {
	Triggered bool `json:"triggered"`
}

func (s *Server) triggerListingScrape(c *fiber.Ctx) error {
	return s.runTrigger(c, "start_scraping_listing", s.tasks.StartScrapingListing)
}

func (s *Server) triggerBatchCreate(c *fiber.Ctx) error {
	return s.runTrigger(c, "create_product_batches", s.tasks.CreateProductBatches)
}

func (s *Server) triggerBatchScrape(c *fiber.Ctx) error {
	return s.runTrigger(c, "scrape_batch", s.tasks.ScrapeBatch)
}

func (s *Server) triggerFetchResults(c *fiber.Ctx) error {
	return s.runTrigger(c, "fetch_results", s.tasks.FetchResults)
}

// runTrigger invokes a scheduler task synchronously, reusing exactly
// the code path the ticker loop calls so a manual trigger and a
// scheduled tick can never diverge in behavior.
func (s *Server) runTrigger(c *fiber.Ctx, name string, fn func(ctx context.Context) error) error {
	if err := fn(c.Context()); err != nil {
		s.logger.Error("manual trigger failed", "task", name, "error", err)
		return errorResponse(c, fiber.StatusInternalServerError, "TRIGGER_FAILED", err.Error())
	}
	s.logger.Info("manual trigger completed", "task", name)
	return c.JSON(TriggerResponse{Triggered: true})
}
