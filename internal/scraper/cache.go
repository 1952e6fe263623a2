package scraper

import (
	"log/slog"
	"sync"
)

// globalNode and localNode form two intertwined doubly linked lists
// over the same set of cached scrapers: the global list orders every
// cached scraper by insertion recency for eviction, while each
// source's local list orders only that source's scrapers for
// tail-get. Every localNode carries a back-reference to its globalNode
// so a get() or eviction can unlink both lists in one pass without a
// second lookup.
type globalNode struct {
	scraper Scraper
	source  string
	local   *localNode
	prev    *globalNode
	next    *globalNode
}

type localNode struct {
	scraper Scraper
	source  string
	global  *globalNode
	prev    *localNode
	next    *localNode
}

type localList struct {
	head *localNode
	tail *localNode
}

// Cache is an LRU cache of live Scraper instances keyed by source
// website, bounded at MaxSize entries. A get() always returns the
// most recently inserted scraper for a given source (tail-get) and
// removes it from the cache, on the assumption that a caller taking a
// scraper out of the cache is about to use it exclusively; insert()
// puts it back when the caller is done. When the cache grows past
// MaxSize, the globally oldest entry is evicted and Closed.
type Cache struct {
	mu         sync.Mutex
	maxSize    int
	globalHead *globalNode
	globalTail *globalNode
	bySource   map[string]*localList
	count      int
	logger     *slog.Logger
	onEvict    func()
}

// NewCache constructs a Cache bounded at maxSize entries. onEvict, if
// non-nil, is called once per eviction after the evicted scraper has
// been closed, so callers can record a metric without this package
// depending on the metrics package.
func NewCache(maxSize int, logger *slog.Logger, onEvict func()) *Cache {
	if maxSize <= 0 {
		maxSize = 17
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		maxSize:  maxSize,
		bySource: make(map[string]*localList),
		logger:   logger,
		onEvict:  onEvict,
	}
}

// Get removes and returns the most recently inserted Scraper cached
// for source, or nil if none is cached.
func (c *Cache) Get(source string) Scraper {
	c.mu.Lock()
	defer c.mu.Unlock()

	list, ok := c.bySource[source]
	if !ok || list.tail == nil {
		return nil
	}

	ln := list.tail
	gn := ln.global
	sc := gn.scraper

	c.unlinkGlobal(gn)
	c.unlinkLocal(source, list, ln)
	c.count--

	c.logger.Debug("scraper cache hit", "source", source, "count", c.count)
	return sc
}

// Insert adds a Scraper to the cache under source, evicting and
// closing the globally oldest entry if this insert pushes the cache
// past MaxSize.
func (c *Cache) Insert(source string, sc Scraper) {
	c.mu.Lock()
	var evicted Scraper
	defer func() {
		c.mu.Unlock()
		if evicted != nil {
			_ = evicted.Close()
			if c.onEvict != nil {
				c.onEvict()
			}
		}
	}()

	ln := &localNode{scraper: sc, source: source}
	gn := &globalNode{scraper: sc, source: source, local: ln}
	ln.global = gn

	gn.prev = c.globalTail
	if c.globalTail != nil {
		c.globalTail.next = gn
	}
	c.globalTail = gn
	if c.globalHead == nil {
		c.globalHead = gn
	}

	list, ok := c.bySource[source]
	if !ok {
		list = &localList{}
		c.bySource[source] = list
	}
	ln.prev = list.tail
	if list.tail != nil {
		list.tail.next = ln
	}
	list.tail = ln
	if list.head == nil {
		list.head = ln
	}

	c.count++
	c.logger.Debug("scraper cache insert", "source", source, "count", c.count)

	if c.count > c.maxSize {
		evicted = c.evictOldest()
	}
}

// Len reports the number of scrapers currently cached, across all
// sources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// unlinkGlobal removes gn from the global list. Caller holds c.mu.
func (c *Cache) unlinkGlobal(gn *globalNode) {
	if gn.prev != nil {
		gn.prev.next = gn.next
	} else {
		c.globalHead = gn.next
	}
	if gn.next != nil {
		gn.next.prev = gn.prev
	} else {
		c.globalTail = gn.prev
	}
}

// unlinkLocal removes ln from source's local list, dropping the list
// entirely once it's empty. Caller holds c.mu.
func (c *Cache) unlinkLocal(source string, list *localList, ln *localNode) {
	if ln.prev != nil {
		ln.prev.next = ln.next
	} else {
		list.head = ln.next
	}
	if ln.next != nil {
		ln.next.prev = ln.prev
	} else {
		list.tail = ln.prev
	}
	if list.head == nil && list.tail == nil {
		delete(c.bySource, source)
	}
}

// evictOldest removes the global head (the oldest cached scraper)
// from both lists and returns its Scraper so the caller can Close it
// outside the lock. Caller holds c.mu.
func (c *Cache) evictOldest() Scraper {
	oldest := c.globalHead
	if oldest == nil {
		return nil
	}

	c.globalHead = oldest.next
	if c.globalHead != nil {
		c.globalHead.prev = nil
	} else {
		c.globalTail = nil
	}
	c.count--

	if list, ok := c.bySource[oldest.source]; ok {
		c.unlinkLocal(oldest.source, list, oldest.local)
	}

	c.logger.Warn("evicting scraper from cache", "source", oldest.source, "count", c.count)
	return oldest.scraper
}
