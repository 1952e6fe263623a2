package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ContentLoader fetches a page and hands back a parsed DOM a plug-in
// can run CSS selectors against. Plug-ins depend on this interface
// rather than on net/http or go-rod directly so the same extraction
// code works whether the page needs a real browser or not.
type ContentLoader interface {
	Load(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// RequestLoader fetches a page with a plain HTTP GET. It covers pages
// whose listing/product content is present in the initial HTML
// response, the Go equivalent of the original's "Request" loader
// variant.
type RequestLoader struct {
	Client        *http.Client
	UserAgent     string
	RespectRobots bool

	robots     *robotsCache
	robotsOnce sync.Once
}

// NewRequestLoader builds a RequestLoader with the given timeout.
func NewRequestLoader(timeout time.Duration, userAgent string, respectRobots bool) *RequestLoader {
	return &RequestLoader{
		Client:        &http.Client{Timeout: timeout},
		UserAgent:     userAgent,
		RespectRobots: respectRobots,
	}
}

func (l *RequestLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	u, err := normalizeURL(pageURL)
	if err != nil {
		return nil, err
	}

	if l.RespectRobots {
		l.robotsOnce.Do(func() { l.robots = newRobotsCache(l.Client) })
		if !l.robots.Allowed(ctx, u.String(), l.UserAgent) {
			return nil, fmt.Errorf("%w: disallowed by robots.txt", ErrContentNotLoaded)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadURL, err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", ErrRateLimit, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: status %d", ErrContentNotLoaded, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataParsing, err)
	}
	return doc, nil
}

// BrowserLoader renders a page in a headless Chromium instance before
// extracting its DOM, covering pages whose content is populated by
// client-side JavaScript after the initial load. Grounded in the
// teacher's RodScraper, which manages a local browser per scrape
// rather than an external browser pool.
type BrowserLoader struct {
	Timeout time.Duration
}

// NewBrowserLoader builds a BrowserLoader with the given per-page
// timeout.
func NewBrowserLoader(timeout time.Duration) *BrowserLoader {
	return &BrowserLoader{Timeout: timeout}
}

func (l *BrowserLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	u, err := normalizeURL(pageURL)
	if err != nil {
		return nil, err
	}

	browser, err := launchLocalBrowser(ctx, l.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataParsing, err)
	}
	return doc, nil
}

// BrowserInfiniteScrollLoader is a BrowserLoader variant for listing
// pages that load further products as the user scrolls. It scrolls
// the page in a loop, stopping once TargetElementClass's match count
// stops growing between scrolls or MaxScrolls is reached, whichever
// comes first.
type BrowserInfiniteScrollLoader struct {
	Timeout            time.Duration
	MaxScrolls         int
	ScrollDelay        time.Duration
	TargetElementClass string
}

// NewBrowserInfiniteScrollLoader builds a loader with the given
// scroll-loop bounds.
func NewBrowserInfiniteScrollLoader(timeout time.Duration, maxScrolls int, scrollDelay time.Duration, targetElementClass string) *BrowserInfiniteScrollLoader {
	return &BrowserInfiniteScrollLoader{
		Timeout:            timeout,
		MaxScrolls:         maxScrolls,
		ScrollDelay:        scrollDelay,
		TargetElementClass: targetElementClass,
	}
}

func (l *BrowserInfiniteScrollLoader) Load(ctx context.Context, pageURL string) (*goquery.Document, error) {
	u, err := normalizeURL(pageURL)
	if err != nil {
		return nil, err
	}

	browser, err := launchLocalBrowser(ctx, l.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}
	defer func() { _ = browser.Close() }()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}
	defer func() { _ = page.Close() }()

	if err := page.Context(ctx).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	selector := "." + l.TargetElementClass
	lastCount := -1
	for i := 0; i < l.MaxScrolls; i++ {
		elements, err := page.Elements(selector)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataComponentNotFound, err)
		}
		if len(elements) == lastCount {
			break
		}
		lastCount = len(elements)

		if err := page.Mouse.Scroll(0, 2000, 1); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(l.ScrollDelay):
		}
	}

	htmlStr, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentNotLoaded, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataParsing, err)
	}
	return doc, nil
}

// launchLocalBrowser starts a headless, sandbox-free Chromium
// instance, matching the teacher's newLocalRodBrowser.
func launchLocalBrowser(ctx context.Context, timeout time.Duration) (*rod.Browser, error) {
	u, err := launcher.New().Headless(true).NoSandbox(true).Launch()
	if err != nil {
		return nil, err
	}
	browser := rod.New().ControlURL(u).Context(ctx)
	if timeout > 0 {
		browser = browser.Timeout(timeout)
	}
	if err := browser.Connect(); err != nil {
		return nil, err
	}
	return browser, nil
}

func normalizeURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrBadURL, raw)
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u, nil
}
