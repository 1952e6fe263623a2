package scraper

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// resolveAgainst resolves href relative to base, returning href
// unchanged if either fails to parse. Listing pages routinely emit
// root-relative links, so plug-ins always run discovered hrefs
// through this before handing them back.
func resolveAgainst(base, href string) string {
	if href == "" {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

// pageParamFromURL reads a "page" query parameter off rawURL, used as
// a best-effort CurrentPage when a site's markup doesn't otherwise
// expose it. Returns 0 if absent or unparsable.
func pageParamFromURL(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0
	}
	raw := u.Query().Get("page")
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// ProductIDFromURL derives a stable, source-defined product id from a
// product page URL, in the spirit of the original's amzn_<ASIN> ids:
// "<domain>_<last-path-segment>". Two ProductUrls that share a domain
// and final path segment (the same product reached via two listings,
// or with a different query string) resolve to the same id, letting
// the ingestor's additive-update path de-duplicate them.
func ProductIDFromURL(pageURL string) (string, error) {
	domain, err := extractDomain(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadURL, err)
	}

	segments := strings.Split(strings.Trim(u.EscapedPath(), "/"), "/")
	slug := strings.ToLower(segments[len(segments)-1])
	if slug == "" {
		slug = strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	}
	return domain + "_" + slug, nil
}
