package httpadmin

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestCreateSourceRejectsMissingFields(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Post("/api/sources", s.createSource)

	req := httptest.NewRequest(http.MethodPost, "/api/sources", bytes.NewBufferString(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

