package httpagent

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// ScrapeRequest is the body for POST /scrape.
type ScrapeRequest struct {
	WebpageURL string         `json:"webpage_url"`
	Priority   model.Priority `json:"priority"`
	TypePage   model.TypePage `json:"type_page"`
}

// ScrapeResponse is the 200 body for POST /scrape.
type ScrapeResponse struct {
	JobID string `json:"job_id"`
}

func (s *Server) submitScrape(c *fiber.Ctx) error {
	var req ScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}
	if req.WebpageURL == "" {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_WEBPAGE_URL", "webpage_url is required")
	}
	if !req.Priority.Valid() {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_PRIORITY", "priority must be one of high, medium, low")
	}
	if !req.TypePage.Valid() {
		return errorResponse(c, fiber.StatusBadRequest, "INVALID_TYPE_PAGE", "type_page must be one of listing, product")
	}

	job := &model.Job{
		ID:         uuid.NewString(),
		WebpageURL: req.WebpageURL,
		Priority:   req.Priority,
		TypePage:   req.TypePage,
		Status:     model.JobQueued,
		CreatedAt:  time.Now().UTC(),
	}

	ctx := c.Context()
	if err := s.store.Jobs.Create(ctx, job); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "JOB_CREATE_FAILED", err.Error())
	}
	if err := s.queue.Push(ctx, job.TypePage, job.Priority, job.ID); err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "JOB_ENQUEUE_FAILED", err.Error())
	}

	s.metrics.JobStarted(string(job.TypePage), string(job.Priority))
	s.logger.Info("job submitted", "job_id", job.ID, "type_page", job.TypePage, "priority", job.Priority)

	return c.JSON(ScrapeResponse{JobID: job.ID})
}

func (s *Server) jobStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	job, err := s.store.Jobs.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "STATUS_LOOKUP_FAILED", err.Error())
	}
	if job == nil {
		return errorResponse(c, fiber.StatusNotFound, "JOB_NOT_FOUND", "no job with that id")
	}
	return c.JSON(job)
}

func (s *Server) jobResult(c *fiber.Ctx) error {
	id := c.Params("id")
	result, err := s.store.JobResults.Get(c.Context(), id)
	if err != nil {
		return errorResponse(c, fiber.StatusInternalServerError, "RESULT_LOOKUP_FAILED", err.Error())
	}
	if result == nil {
		return errorResponse(c, fiber.StatusNotFound, "RESULT_NOT_FOUND", "job has no terminal result yet")
	}
	return c.JSON(result)
}
