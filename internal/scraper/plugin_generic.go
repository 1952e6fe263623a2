package scraper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	htmlmd "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/wearlytic/fashionpipeline/internal/model"
)

// GenericSelectors names the CSS selectors a GenericScraper uses to
// pull listing links and product fields out of a page. It exists so
// the same extraction code can be reused across sites that happen to
// share a similar DOM shape, by registering the same factory under
// several domains with different selector sets.
type GenericSelectors struct {
	ProductLink  string // anchor selector on a listing page
	NextPage     string // anchor selector for the next listing page
	Title        string
	Price        string
	Description  string
	Image        string
	Category     string
}

// GenericScraper implements Scraper against a configurable CSS
// selector set. It is a reference plug-in exercising the registry,
// cache, and job plane end to end; it is not meant to cover every
// fashion site's markup.
type GenericScraper struct {
	loader    ContentLoader
	selectors GenericSelectors
}

// NewGenericFactory returns a Factory that builds GenericScrapers
// using sel, resolving which ContentLoader to use from cfg.Loader.
func NewGenericFactory(sel GenericSelectors) Factory {
	return func(cfg Config) (Scraper, error) {
		if cfg.Loader == nil {
			return nil, fmt.Errorf("generic scraper: no ContentLoader configured")
		}
		return &GenericScraper{loader: cfg.Loader, selectors: sel}, nil
	}
}

func (g *GenericScraper) PageContent(ctx context.Context, pageURL string) (string, error) {
	doc, err := g.loader.Load(ctx, pageURL)
	if err != nil {
		return "", err
	}
	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataParsing, err)
	}
	converter := htmlmd.NewConverter("", true, nil)
	md, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDataParsing, err)
	}
	return md, nil
}

func (g *GenericScraper) Pagination(ctx context.Context, pageURL string) (PaginationDetails, error) {
	doc, err := g.loader.Load(ctx, pageURL)
	if err != nil {
		return PaginationDetails{}, err
	}

	details := PaginationDetails{CurrentPage: 1}
	if p := pageParamFromURL(pageURL); p > 0 {
		details.CurrentPage = p
	}

	next, ok := doc.Find(g.selectors.NextPage).First().Attr("href")
	if ok {
		details.NextPageURL = resolveAgainst(pageURL, next)
	}
	return details, nil
}

func (g *GenericScraper) ProductListings(ctx context.Context, pageURL string, page int) ([]string, error) {
	doc, err := g.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	sel := doc.Find(g.selectors.ProductLink)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: selector %q matched nothing", ErrDataComponentNotFound, g.selectors.ProductLink)
	}

	urls := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		urls = append(urls, resolveAgainst(pageURL, href))
	})
	return urls, nil
}

func (g *GenericScraper) ProductDetails(ctx context.Context, pageURL string) (*model.Product, error) {
	doc, err := g.loader.Load(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find(g.selectors.Title).First().Text())
	if title == "" {
		return nil, fmt.Errorf("%w: title selector %q matched nothing", ErrDataComponentNotFound, g.selectors.Title)
	}

	priceText := strings.TrimSpace(doc.Find(g.selectors.Price).First().Text())
	price, err := parsePrice(priceText)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q: %v", ErrDataParsing, priceText, err)
	}

	imageURL, _ := doc.Find(g.selectors.Image).First().Attr("src")
	description := strings.TrimSpace(doc.Find(g.selectors.Description).First().Text())
	category := strings.TrimSpace(doc.Find(g.selectors.Category).First().Text())

	id, err := ProductIDFromURL(pageURL)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &model.Product{
		ID:          id,
		Title:       title,
		Price:       price,
		Category:    category,
		URL:         pageURL,
		ImageURL:    resolveAgainst(pageURL, imageURL),
		Description: description,
		ScrapedAt:   &now,
	}, nil
}

func (g *GenericScraper) Close() error {
	return nil
}

func parsePrice(raw string) (*float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '.' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" {
		return nil, fmt.Errorf("no digits found")
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
