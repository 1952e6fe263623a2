package scraper

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	robotstxt "github.com/temoto/robotstxt"
)

// robotsCache fetches and memoizes robots.txt per host so a listing
// crawl that walks many pages on the same site doesn't refetch it on
// every request. Grounded on the teacher's crawler.fetchRobots, which
// performs the same fetch-and-parse one-shot rather than cached; the
// cache is added here because ContentLoader.Load is called for every
// page (more than once per listing page) rather than once per crawl.
type robotsCache struct {
	client *http.Client
	mu     sync.Mutex
	data   map[string]*robotstxt.RobotsData
}

func newRobotsCache(client *http.Client) *robotsCache {
	return &robotsCache{client: client, data: make(map[string]*robotstxt.RobotsData)}
}

// Allowed reports whether userAgent may fetch pageURL per the host's
// robots.txt. A fetch failure is treated as allowed, matching the
// teacher's own tolerance for missing/unreachable robots.txt files.
func (c *robotsCache) Allowed(ctx context.Context, pageURL, userAgent string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	c.mu.Lock()
	rd, ok := c.data[u.Host]
	c.mu.Unlock()
	if !ok {
		rd, _ = fetchRobots(ctx, c.client, u)
		c.mu.Lock()
		c.data[u.Host] = rd
		c.mu.Unlock()
	}
	if rd == nil {
		return true
	}

	group := rd.FindGroup(userAgent)
	if group == nil {
		return true
	}
	return group.Test(u.String())
}

func fetchRobots(ctx context.Context, client *http.Client, base *url.URL) (*robotstxt.RobotsData, error) {
	robotsURL := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/robots.txt"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	return robotstxt.FromStatusAndBytes(resp.StatusCode, body)
}
