package connpassmcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lujin3/go-connpass/connpass"
	"github.com/lujin3/go-connpass/kvstore/leveldb"
	"github.com/lujin3/go-connpass/kvstore/sqlite"
)

// storePath returns where the configured backend keeps its data. The file
// backend uses the configured path as is. The other backends replace a .json
// extension, so the default path yields data/presentation-cache.leveldb or
// data/presentation-cache.db.
func storePath(cfg connpass.Config) string {
	path := cfg.PresentationCachePath
	base := strings.TrimSuffix(path, ".json")
	if base == path {
		return path
	}
	switch cfg.PresentationCacheBackend {
	case "leveldb":
		return base + ".leveldb"
	case "sqlite":
		return base + ".db"
	}
	return path
}

// openCache builds the presentation cache selected by cfg. The returned close
// function releases the backing store and is always safe to call.
func openCache(ctx context.Context, cfg connpass.Config, logger *slog.Logger) (connpass.PresentationCache, func() error, error) {
	nop := func() error { return nil }
	if !cfg.PresentationCacheEnabled.Bool() {
		return connpass.NopCache{}, nop, nil
	}

	ttl := cfg.PresentationCacheTTL.Duration()
	path := storePath(cfg)

	switch cfg.PresentationCacheBackend {
	case "file":
		return connpass.NewTableCache(connpass.NewFileStore(path), ttl, logger), nop, nil

	case "leveldb":
		store, err := leveldb.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open presentation cache: %w", err)
		}
		return connpass.NewKVCache(store, ttl, logger), store.Close, nil

	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create presentation cache directory: %w", err)
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open presentation cache: %w", err)
		}
		purged, err := store.Purge(ctx)
		if err != nil {
			logger.WarnContext(ctx, "presentation cache purge failed", slog.String("error", err.Error()))
		} else if purged > 0 {
			logger.InfoContext(ctx, "purged expired presentation cache entries", slog.Int64("count", purged))
		}
		return connpass.NewKVCache(store, ttl, logger), store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown presentation cache backend %q", cfg.PresentationCacheBackend)
}
