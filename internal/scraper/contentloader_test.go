package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestLoaderParsesSuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><h1>hi</h1></body></html>`))
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "test-agent", false)
	doc, err := l.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Find("h1").Text() != "hi" {
		t.Fatalf("expected parsed document, got %q", doc.Find("h1").Text())
	}
}

func TestRequestLoaderMapsTooManyRequestsToRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "test-agent", false)
	_, err := l.Load(context.Background(), srv.URL)
	if !errors.Is(err, ErrRateLimit) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
}

func TestRequestLoaderMaps4xxAnd5xxToContentNotLoaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "test-agent", false)
	_, err := l.Load(context.Background(), srv.URL)
	if !errors.Is(err, ErrContentNotLoaded) {
		t.Fatalf("expected ErrContentNotLoaded, got %v", err)
	}
}

func TestRequestLoaderMapsContextDeadlineToTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "test-agent", false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := l.Load(ctx, srv.URL)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}
