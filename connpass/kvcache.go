package connpass

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
)

// PresentationKeyPrefix prefixes every key KVCache writes.
const PresentationKeyPrefix = "presentation:"

// KVStore is a key-value store with optional per-key expiry.
type KVStore interface {
	// Get returns the value for key. ok is false when the key is absent or
	// has expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key. A ttl of zero stores it without expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
}

// KVClearer is implemented by stores able to delete every key with a prefix.
type KVClearer interface {
	Clear(ctx context.Context, prefix string) error
}

// KVCache is a PresentationCache keeping one entry per event in a KVStore.
// Entries are written with the store's own expiry set to the cache TTL, and
// are also checked against their recorded expiry on read.
//
// Store failures are logged and reported as misses; they never reach the
// caller.
type KVCache struct {
	store  KVStore
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewKVCache returns a KVCache over store. A ttl of zero keeps entries
// forever; negative values are treated as zero.
func NewKVCache(store KVStore, ttl time.Duration, logger *slog.Logger) *KVCache {
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KVCache{store: store, ttl: ttl, logger: logger, now: time.Now}
}

func presentationKey(eventID int) string {
	return PresentationKeyPrefix + strconv.Itoa(eventID)
}

func (c *KVCache) Get(ctx context.Context, eventID int) (*PresentationsResponse, bool, error) {
	key := presentationKey(eventID)

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "presentation cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Data == nil {
		c.logger.WarnContext(ctx, "presentation cache entry unreadable, dropping", slog.String("key", key))
		c.delete(ctx, key)
		return nil, false, nil
	}
	if entry.expired(c.now(), c.ttl) {
		c.delete(ctx, key)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

func (c *KVCache) Set(ctx context.Context, eventID int, resp *PresentationsResponse) error {
	key := presentationKey(eventID)

	raw, err := json.Marshal(CacheEntry{ExpiresAt: expiresAt(c.now(), c.ttl), Data: resp})
	if err != nil {
		return fmt.Errorf("encode presentation cache entry: %w", err)
	}
	if err := c.store.Put(ctx, key, raw, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "presentation cache put failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Clear removes every presentation entry when the store implements
// KVClearer. Otherwise it logs and leaves entries to expire.
func (c *KVCache) Clear(ctx context.Context) error {
	clearer, ok := c.store.(KVClearer)
	if !ok {
		c.logger.WarnContext(ctx, "presentation cache store cannot enumerate keys; clear skipped")
		return nil
	}
	if err := clearer.Clear(ctx, PresentationKeyPrefix); err != nil {
		c.logger.WarnContext(ctx, "presentation cache clear failed", slog.String("error", err.Error()))
	}
	return nil
}

func (c *KVCache) delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.WarnContext(ctx, "presentation cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}
