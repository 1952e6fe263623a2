package store

import "errors"

// ErrNotFound is returned when an update or lookup targets a document
// that does not exist, distinguishing "nothing to do" from a real
// MongoDB error further up the call stack.
var ErrNotFound = errors.New("store: document not found")

// ErrSourceHasListings is returned by SourceStore.Delete when the
// Source still owns Listings: deleting it would leave them orphaned,
// so the caller must remove them first.
var ErrSourceHasListings = errors.New("store: source has listings, remove them first")
