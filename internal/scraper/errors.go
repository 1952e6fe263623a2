package scraper

import "errors"

// Sentinel errors covering the scraper failure taxonomy. Scraper
// implementations should wrap one of these with fmt.Errorf("%w: ...")
// so callers can classify a failure with errors.Is without depending
// on a particular plugin's error type.
var (
	// ErrBadURL means the URL is malformed or not a valid product/listing
	// page for the addressed source.
	ErrBadURL = errors.New("scraper: bad url")

	// ErrContentNotLoaded means the page never finished loading (blank
	// response, browser navigation failure, or a page that's clearly an
	// interstitial rather than the target content).
	ErrContentNotLoaded = errors.New("scraper: content not loaded")

	// ErrTimeout means the load or scroll loop exceeded its deadline.
	ErrTimeout = errors.New("scraper: timeout")

	// ErrRateLimit means the source responded with a rate-limit or
	// block signal (HTTP 429, a CAPTCHA page, and similar).
	ErrRateLimit = errors.New("scraper: rate limited")

	// ErrDataComponentNotFound means a required selector did not match
	// anything on an otherwise successfully loaded page.
	ErrDataComponentNotFound = errors.New("scraper: data component not found")

	// ErrDataParsing means a selector matched but its contents could not
	// be parsed into the expected shape (price, rating, and so on).
	ErrDataParsing = errors.New("scraper: data parsing failed")
)
