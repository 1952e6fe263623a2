package scraper

import (
	"context"
	"testing"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// fakeScraper is a no-op Scraper used to exercise Cache without a
// real ContentLoader, tracking whether Close was called and how many
// times.
type fakeScraper struct {
	id     string
	closed int
}

func (f *fakeScraper) PageContent(ctx context.Context, url string) (string, error)     { return "", nil }
func (f *fakeScraper) Pagination(ctx context.Context, url string) (PaginationDetails, error) {
	return PaginationDetails{}, nil
}
func (f *fakeScraper) ProductListings(ctx context.Context, url string, page int) ([]string, error) {
	return nil, nil
}
func (f *fakeScraper) ProductDetails(ctx context.Context, url string) (*model.Product, error) {
	return nil, nil
}
func (f *fakeScraper) Close() error {
	f.closed++
	return nil
}

func TestCacheGetIsTailGetAndRemovesEntry(t *testing.T) {
	c := NewCache(17, nil, nil)

	first := &fakeScraper{id: "first"}
	second := &fakeScraper{id: "second"}
	c.Insert("myntra", first)
	c.Insert("myntra", second)

	got := c.Get("myntra")
	if got != Scraper(second) {
		t.Fatalf("expected tail-get to return the most recently inserted scraper, got %v", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one entry left after tail-get, got %d", c.Len())
	}

	got = c.Get("myntra")
	if got != Scraper(first) {
		t.Fatalf("expected second get to return the remaining scraper, got %v", got)
	}
	if c.Len() != 0 {
		t.Fatalf("expected cache empty after draining myntra, got %d", c.Len())
	}
}

func TestCacheGetOnUnknownSourceReturnsNil(t *testing.T) {
	c := NewCache(17, nil, nil)
	if got := c.Get("unknown"); got != nil {
		t.Fatalf("expected nil for uncached source, got %v", got)
	}
}

func TestCacheEvictsOldestAndClosesExactlyOnce(t *testing.T) {
	var evictions int
	c := NewCache(2, nil, func() { evictions++ })

	oldest := &fakeScraper{id: "oldest"}
	middle := &fakeScraper{id: "middle"}
	newest := &fakeScraper{id: "newest"}

	c.Insert("a", oldest)
	c.Insert("b", middle)
	c.Insert("c", newest)

	if c.Len() != 2 {
		t.Fatalf("expected cache to stay at max size 2, got %d", c.Len())
	}
	if oldest.closed != 1 {
		t.Fatalf("expected the globally oldest entry to be closed exactly once, got %d", oldest.closed)
	}
	if middle.closed != 0 || newest.closed != 0 {
		t.Fatalf("expected surviving entries to remain open")
	}
	if evictions != 1 {
		t.Fatalf("expected onEvict called once, got %d", evictions)
	}

	if got := c.Get("a"); got != nil {
		t.Fatalf("expected evicted source to be gone from the cache, got %v", got)
	}
}

func TestCacheDefaultMaxSizeIsSeventeen(t *testing.T) {
	c := NewCache(0, nil, nil)
	if c.maxSize != 17 {
		t.Fatalf("expected default max_size 17, got %d", c.maxSize)
	}
}
