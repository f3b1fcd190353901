package connpass

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// FileSchemaVersion is the version written into presentation cache files.
// Files whose major version differs are discarded on load.
const FileSchemaVersion = "1.0.0"

// DefaultPresentationCachePath is where the file cache lives unless
// configured otherwise.
const DefaultPresentationCachePath = "data/presentation-cache.json"

// ErrIncompatibleCacheFile is returned by FileStore.Load for a file written
// with a different schema major version.
var ErrIncompatibleCacheFile = errors.New("incompatible presentation cache file")

type cacheFile struct {
	Schema  string                `json:"schema"`
	Entries map[string]CacheEntry `json:"entries"`
}

// FileStore is a TableStore keeping the table in a single JSON file.
type FileStore struct {
	path   string
	schema *semver.Version
}

// NewFileStore returns a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		schema: semver.MustParse(FileSchemaVersion),
	}
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Load reads the table. A missing file is an empty table. Keys that are not
// positive integers are skipped.
func (s *FileStore) Load(ctx context.Context) (map[int]CacheEntry, error) {
	entries := make(map[int]CacheEntry)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return entries, fmt.Errorf("read presentation cache: %w", err)
	}

	var doc cacheFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return entries, fmt.Errorf("decode presentation cache %s: %w", s.path, err)
	}

	v, err := semver.NewVersion(doc.Schema)
	if err != nil || v.Major() != s.schema.Major() {
		return entries, fmt.Errorf("%w: %s has schema %q, want %s", ErrIncompatibleCacheFile, s.path, doc.Schema, s.schema)
	}

	for key, entry := range doc.Entries {
		id, err := strconv.Atoi(key)
		if err != nil || id <= 0 || entry.Data == nil {
			continue
		}
		entries[id] = entry
	}
	return entries, nil
}

// Save replaces the file with entries. The write goes to a temporary file in
// the same directory which is then renamed over the old one.
func (s *FileStore) Save(ctx context.Context, entries map[int]CacheEntry) error {
	doc := cacheFile{
		Schema:  s.schema.String(),
		Entries: make(map[string]CacheEntry, len(entries)),
	}
	for id, entry := range entries {
		doc.Entries[strconv.Itoa(id)] = entry
	}

	data, err := json.Marshal(doc, json.Deterministic(true), jsontext.WithIndent("  "))
	if err != nil {
		return fmt.Errorf("encode presentation cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create presentation cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".presentation-cache-*.json")
	if err != nil {
		return fmt.Errorf("write presentation cache: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write presentation cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write presentation cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write presentation cache: %w", err)
	}
	return nil
}
