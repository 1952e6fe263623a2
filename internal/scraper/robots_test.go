package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestLoaderRespectsRobotsDisallow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
		case "/blocked":
			w.Write([]byte("<html></html>"))
		}
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "*", true)
	_, err := l.Load(context.Background(), srv.URL+"/blocked")
	if err == nil {
		t.Fatal("expected robots.txt to block the request")
	}
}

func TestRequestLoaderAllowsPathNotDisallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
		case "/ok":
			w.Write([]byte("<html><body>ok</body></html>"))
		}
	}))
	defer srv.Close()

	l := NewRequestLoader(2*time.Second, "*", true)
	doc, err := l.Load(context.Background(), srv.URL+"/ok")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Find("body").Text() != "ok" {
		t.Fatalf("unexpected body: %q", doc.Find("body").Text())
	}
}
