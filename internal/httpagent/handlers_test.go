package httpagent

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// newValidationOnlyServer builds a Server whose dependencies are left
// nil, valid only for exercising request-validation paths that return
// before touching the store, queue, or metrics.
func newValidationOnlyServer() *Server {
	return &Server{}
}

func TestSubmitScrapeRejectsMissingWebpageURL(t *testing.T) {
	s := newValidationOnlyServer()
	app := fiber.New()
	app.Post("/scrape", s.submitScrape)

	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(`{"priority":"high","type_page":"product"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitScrapeRejectsInvalidPriority(t *testing.T) {
	s := newValidationOnlyServer()
	app := fiber.New()
	app.Post("/scrape", s.submitScrape)

	body := `{"webpage_url":"https://shop.example.com/p","priority":"urgent","type_page":"product"}`
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSubmitScrapeRejectsInvalidTypePage(t *testing.T) {
	s := newValidationOnlyServer()
	app := fiber.New()
	app.Post("/scrape", s.submitScrape)

	body := `{"webpage_url":"https://shop.example.com/p","priority":"high","type_page":"category"}`
	req := httptest.NewRequest(http.MethodPost, "/scrape", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
