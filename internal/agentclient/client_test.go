package agentclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

func TestSubmitSendsBearerTokenAndReturnsJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer token header, got %q", r.Header.Get("Authorization"))
		}
		var body SubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.WebpageURL != "https://shop.example.com/listing" {
			t.Errorf("unexpected webpage_url in body: %q", body.WebpageURL)
		}
		json.NewEncoder(w).Encode(SubmitResponse{JobID: "job-123"})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 2*time.Second)
	jobID, err := c.Submit(t.Context(), SubmitRequest{
		WebpageURL: "https://shop.example.com/listing",
		Priority:   model.PriorityLow,
		TypePage:   model.TypePageListing,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID != "job-123" {
		t.Fatalf("expected job-123, got %q", jobID)
	}
}

func TestSubmitNonOKStatusReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 2*time.Second)
	_, err := c.Submit(t.Context(), SubmitRequest{WebpageURL: "https://x.com"})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestResultReturnsNilOnNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 2*time.Second)
	result, err := c.Result(t.Context(), "job-123")
	if err != nil {
		t.Fatalf("expected nil error on 404, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result on 404, got %+v", result)
	}
}

func TestStatusDecodesResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(StatusResponse{
			JobID:  "job-123",
			Status: model.JobCompleted,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", 2*time.Second)
	status, err := c.Status(t.Context(), "job-123")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != model.JobCompleted {
		t.Fatalf("expected completed status, got %q", status.Status)
	}
}
