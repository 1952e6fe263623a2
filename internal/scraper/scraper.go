package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// PaginationDetails describes where a listing page sits in its own
// pagination sequence.
type PaginationDetails struct {
	CurrentPage int
	NextPageURL string // empty when there is no further page
}

// Scraper is the capability set a site plug-in must implement. A
// single Scraper instance is stateful (it may hold an open browser
// page or an HTTP client with warmed cookies) and is cached between
// jobs for the same source rather than recreated per request.
type Scraper interface {
	// PageContent fetches url and returns its rendered content as
	// Markdown, used for generic page archival independent of any
	// structured extraction.
	PageContent(ctx context.Context, url string) (string, error)

	// Pagination inspects a listing page and reports its position and
	// successor.
	Pagination(ctx context.Context, url string) (PaginationDetails, error)

	// ProductListings extracts the product URLs present on one listing
	// page.
	ProductListings(ctx context.Context, url string, page int) ([]string, error)

	// ProductDetails scrapes a single product page into a Product. The
	// returned Product carries a source-defined, stable ID (the Go
	// equivalent of the original's amzn_<ASIN> ids); URLID is left
	// zero-valued for the caller to assign.
	ProductDetails(ctx context.Context, url string) (*model.Product, error)

	// Close releases any resources held by the scraper (an open
	// browser context, pooled connections). The Cache calls it exactly
	// once, when it evicts the scraper; jobs return their scraper to
	// the cache rather than closing it.
	Close() error
}

// Config carries the per-instantiation settings a Factory needs to
// build a Scraper: which ContentLoader variant to use and how long to
// wait for network and browser operations.
type Config struct {
	Loader  ContentLoader
	Timeout int // seconds
}

// Factory constructs a fresh Scraper for a second-level domain.
type Factory func(cfg Config) (Scraper, error)

// Registry maps a second-level domain token (e.g. "myntra" for
// myntra.com) to the Factory that builds scrapers for it.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces the Factory for domain.
func (r *Registry) Register(domain string, f Factory) {
	r.factories[domain] = f
}

// FactoryForURL resolves the Factory registered for rawURL's
// second-level domain, mirroring the original's get_scraper_from_url.
func (r *Registry) FactoryForURL(rawURL string) (Factory, error) {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	f, ok := r.factories[domain]
	if !ok {
		return nil, fmt.Errorf("%w: no scraper registered for domain %q", ErrBadURL, domain)
	}
	return f, nil
}

// ExtractDomainForCache exposes extractDomain for callers outside this
// package (the job runner) that need the same cache key a Registry
// lookup would use, without going through FactoryForURL.
func ExtractDomainForCache(rawURL string) (string, error) {
	return extractDomain(rawURL)
}

// extractDomain reduces a URL's host to its second-level domain token
// (www.myntra.com -> myntra, myntra.com -> myntra).
func extractDomain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", rawURL)
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return host, nil
	}
	return labels[len(labels)-2], nil
}
