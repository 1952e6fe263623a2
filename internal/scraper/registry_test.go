package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

type stubScraper struct{}

func (stubScraper) PageContent(ctx context.Context, url string) (string, error) { return "", nil }
func (stubScraper) Pagination(ctx context.Context, url string) (PaginationDetails, error) {
	return PaginationDetails{}, nil
}
func (stubScraper) ProductListings(ctx context.Context, url string, page int) ([]string, error) {
	return nil, nil
}
func (stubScraper) ProductDetails(ctx context.Context, url string) (*model.Product, error) {
	return nil, nil
}
func (stubScraper) Close() error { return nil }

func TestFactoryForURLResolvesSecondLevelDomain(t *testing.T) {
	r := NewRegistry()
	r.Register("myntra", func(cfg Config) (Scraper, error) { return stubScraper{}, nil })

	f, err := r.FactoryForURL("https://www.myntra.com/shirts")
	if err != nil {
		t.Fatalf("expected registered domain to resolve, got %v", err)
	}
	sc, err := f(Config{})
	if err != nil || sc == nil {
		t.Fatalf("expected factory to build a scraper, got %v, %v", sc, err)
	}
}

func TestFactoryForURLUnregisteredDomain(t *testing.T) {
	r := NewRegistry()
	_, err := r.FactoryForURL("https://unknown-brand.com/p")
	if !errors.Is(err, ErrBadURL) {
		t.Fatalf("expected ErrBadURL, got %v", err)
	}
}

func TestFactoryForURLBadURL(t *testing.T) {
	r := NewRegistry()
	_, err := r.FactoryForURL("not-a-url-at-all")
	if !errors.Is(err, ErrBadURL) {
		t.Fatalf("expected ErrBadURL, got %v", err)
	}
}

func TestExtractDomainForCacheStripsWWWAndSubdomain(t *testing.T) {
	domain, err := ExtractDomainForCache("https://www.myntra.com/shirts?x=1")
	if err != nil {
		t.Fatalf("extract domain: %v", err)
	}
	if domain != "myntra" {
		t.Fatalf("expected myntra, got %q", domain)
	}
}

func TestDefaultRegistryCoversMyntraAndExample(t *testing.T) {
	r := DefaultRegistry()
	for _, u := range []string{"https://www.myntra.com/x", "https://shop.example.com/y"} {
		if _, err := r.FactoryForURL(u); err != nil {
			t.Fatalf("expected %s to resolve against the default registry, got %v", u, err)
		}
	}
}
