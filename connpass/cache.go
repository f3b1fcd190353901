package connpass

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// DefaultPresentationCacheTTL is the entry lifetime used by configuration
// when none is given.
const DefaultPresentationCacheTTL = time.Hour

// neverExpires marks entries of a cache whose TTL is zero.
const neverExpires = math.MaxInt64

// PresentationCache stores presentation responses keyed by event ID.
type PresentationCache interface {
	// Get returns the live entry for eventID. ok is false on a miss,
	// including when the entry had expired.
	Get(ctx context.Context, eventID int) (resp *PresentationsResponse, ok bool, err error)
	Set(ctx context.Context, eventID int, resp *PresentationsResponse) error
	Clear(ctx context.Context) error
}

// NopCache is a PresentationCache that stores nothing.
type NopCache struct{}

func (NopCache) Get(context.Context, int) (*PresentationsResponse, bool, error) {
	return nil, false, nil
}
func (NopCache) Set(context.Context, int, *PresentationsResponse) error { return nil }
func (NopCache) Clear(context.Context) error                           { return nil }

// CacheEntry is a stored response with its expiry in Unix milliseconds.
type CacheEntry struct {
	ExpiresAt int64                  `json:"expiresAt"`
	Data      *PresentationsResponse `json:"data"`
}

// expired reports whether e is stale for a cache with the given ttl. A cache
// without a ttl keeps every entry, whatever expiry it was written with.
func (e CacheEntry) expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return e.ExpiresAt != neverExpires && e.ExpiresAt <= now.UnixMilli()
}

func expiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return neverExpires
	}
	return now.Add(ttl).UnixMilli()
}

// TableStore persists the whole presentation table at once.
type TableStore interface {
	// Load returns the stored table. A store that has never been saved
	// returns an empty table and no error.
	Load(ctx context.Context) (map[int]CacheEntry, error)
	Save(ctx context.Context, entries map[int]CacheEntry) error
}

// TableCache keeps the presentation table in memory and writes all of it
// back to its TableStore after every change. The table is read from the
// store on first use.
type TableCache struct {
	store  TableStore
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	loaded  bool
	entries map[int]CacheEntry
}

// NewTableCache returns a TableCache over store. A ttl of zero keeps entries
// forever; negative values are treated as zero.
func NewTableCache(store TableStore, ttl time.Duration, logger *slog.Logger) *TableCache {
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &TableCache{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		entries: make(map[int]CacheEntry),
	}
}

// ensureLoaded must be called with c.mu held. A store that fails to load is
// logged and treated as empty.
func (c *TableCache) ensureLoaded(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	stored, err := c.store.Load(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "presentation cache load failed, starting empty", slog.String("error", err.Error()))
	}
	now := c.now()
	for id, entry := range stored {
		if entry.expired(now, c.ttl) {
			continue
		}
		c.entries[id] = entry
	}
	c.loaded = true

	return c.persist(ctx)
}

func (c *TableCache) persist(ctx context.Context) error {
	snapshot := make(map[int]CacheEntry, len(c.entries))
	for id, entry := range c.entries {
		snapshot[id] = entry
	}
	return c.store.Save(ctx, snapshot)
}

func (c *TableCache) Get(ctx context.Context, eventID int) (*PresentationsResponse, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return nil, false, err
	}

	entry, ok := c.entries[eventID]
	if !ok {
		return nil, false, nil
	}
	if entry.expired(c.now(), c.ttl) {
		delete(c.entries, eventID)
		return nil, false, c.persist(ctx)
	}
	return entry.Data, true, nil
}

func (c *TableCache) Set(ctx context.Context, eventID int, resp *PresentationsResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureLoaded(ctx); err != nil {
		return err
	}

	c.entries[eventID] = CacheEntry{ExpiresAt: expiresAt(c.now(), c.ttl), Data: resp}
	return c.persist(ctx)
}

func (c *TableCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.entries)
	c.loaded = true
	return c.persist(ctx)
}

// Len reports the number of entries held in memory, expired or not.
func (c *TableCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
