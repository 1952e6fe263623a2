package scraper

// DefaultRegistry builds the Registry shipped with this repo. It
// covers two domains purely to exercise the registry, cache, and job
// plane end to end; operators deploying against additional sites
// register further factories the same way.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("myntra", NewMyntraFactory())
	r.Register("example", NewGenericFactory(GenericSelectors{
		ProductLink: "a.product-link",
		NextPage:    "a.next-page",
		Title:       "h1.product-title",
		Price:       "span.price",
		Description: "div.description",
		Image:       "img.product-image",
		Category:    "span.category",
	}))
	return r
}
