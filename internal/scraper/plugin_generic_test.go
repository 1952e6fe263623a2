package scraper

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// fakeLoader serves a fixed HTML document regardless of the requested
// URL, letting plug-in extraction logic be tested without a network
// round trip.
type fakeLoader struct {
	html string
	err  error
}

func (f fakeLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

const listingHTML = `
<html><body>
  <a class="product-link" href="/p/shoe-1">Shoe 1</a>
  <a class="product-link" href="/p/shoe-2">Shoe 2</a>
  <a class="next-page" href="/listing?page=2">Next</a>
</body></html>`

const productHTML = `
<html><body>
  <h1 class="product-title">Canvas Sneaker</h1>
  <span class="price">$49.99</span>
  <span class="category">Footwear</span>
  <img class="product-image" src="/img/sneaker.jpg">
  <div class="description">A canvas sneaker.</div>
</body></html>`

func testSelectors() GenericSelectors {
	return GenericSelectors{
		ProductLink: "a.product-link",
		NextPage:    "a.next-page",
		Title:       "h1.product-title",
		Price:       "span.price",
		Description: "div.description",
		Image:       "img.product-image",
		Category:    "span.category",
	}
}

func TestGenericScraperProductListingsResolvesRelativeURLs(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: listingHTML}, selectors: testSelectors()}

	urls, err := sc.ProductListings(context.Background(), "https://shop.example.com/listing", 1)
	if err != nil {
		t.Fatalf("product listings: %v", err)
	}
	want := []string{"https://shop.example.com/p/shoe-1", "https://shop.example.com/p/shoe-2"}
	if len(urls) != len(want) || urls[0] != want[0] || urls[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, urls)
	}
}

func TestGenericScraperProductListingsNoMatchIsDataComponentNotFound(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: "<html></html>"}, selectors: testSelectors()}

	_, err := sc.ProductListings(context.Background(), "https://shop.example.com/listing", 1)
	if !errors.Is(err, ErrDataComponentNotFound) {
		t.Fatalf("expected ErrDataComponentNotFound, got %v", err)
	}
}

func TestGenericScraperPaginationFindsNextPage(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: listingHTML}, selectors: testSelectors()}

	details, err := sc.Pagination(context.Background(), "https://shop.example.com/listing?page=1")
	if err != nil {
		t.Fatalf("pagination: %v", err)
	}
	if details.CurrentPage != 1 {
		t.Fatalf("expected current page 1, got %d", details.CurrentPage)
	}
	if details.NextPageURL != "https://shop.example.com/listing?page=2" {
		t.Fatalf("expected resolved next page url, got %q", details.NextPageURL)
	}
}

func TestGenericScraperProductDetailsParsesPrice(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: productHTML}, selectors: testSelectors()}

	product, err := sc.ProductDetails(context.Background(), "https://shop.example.com/p/sneaker")
	if err != nil {
		t.Fatalf("product details: %v", err)
	}
	if product.Title != "Canvas Sneaker" {
		t.Fatalf("expected title parsed, got %q", product.Title)
	}
	if product.Price == nil || *product.Price != 49.99 {
		t.Fatalf("expected price 49.99, got %v", product.Price)
	}
	if product.ImageURL != "https://shop.example.com/img/sneaker.jpg" {
		t.Fatalf("expected resolved image url, got %q", product.ImageURL)
	}
	if product.ID != "example_sneaker" {
		t.Fatalf("expected source-defined id %q, got %q", "example_sneaker", product.ID)
	}
}

func TestGenericScraperProductDetailsSameSlugYieldsSameID(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: productHTML}, selectors: testSelectors()}

	a, err := sc.ProductDetails(context.Background(), "https://shop.example.com/p/sneaker?ref=listingA")
	if err != nil {
		t.Fatalf("product details: %v", err)
	}
	b, err := sc.ProductDetails(context.Background(), "https://shop.example.com/p/sneaker?ref=listingB")
	if err != nil {
		t.Fatalf("product details: %v", err)
	}
	if a.ID != b.ID {
		t.Fatalf("expected the same product reached via two urls to share an id, got %q and %q", a.ID, b.ID)
	}
}

func TestGenericScraperProductDetailsMissingTitleIsDataComponentNotFound(t *testing.T) {
	sc := &GenericScraper{loader: fakeLoader{html: "<html><body></body></html>"}, selectors: testSelectors()}

	_, err := sc.ProductDetails(context.Background(), "https://shop.example.com/p/missing")
	if !errors.Is(err, ErrDataComponentNotFound) {
		t.Fatalf("expected ErrDataComponentNotFound, got %v", err)
	}
}
