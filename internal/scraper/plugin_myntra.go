package scraper

// NewMyntraFactory returns a Factory for myntra.com, built on the
// same GenericScraper extraction code as plugin_generic.go with
// selectors matching Myntra's listing/product DOM as of this writing.
// Per-site selectors are expected to need maintenance as sites change
// their markup; this one plug-in exists to exercise the registry,
// cache, and job plane end to end rather than to guarantee long-term
// scrape accuracy.
func NewMyntraFactory() Factory {
	return NewGenericFactory(GenericSelectors{
		ProductLink: "li.product-base a",
		NextPage:    "li.pagination-next a",
		Title:       "h1.pdp-title",
		Price:       "span.pdp-price strong",
		Description: "div.pdp-product-description-content",
		Image:       "div.image-grid-image",
		Category:    "div.breadcrumbs-container a:last-child",
	})
}
