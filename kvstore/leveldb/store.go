// Package leveldb provides a connpass.KVStore backed by goleveldb.
//
// Values are stored with an 8-byte big-endian expiry prefix in Unix
// milliseconds; zero means the value never expires. Expired values are
// deleted when read.
package leveldb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

const expiryLen = 8

// Store is a KVStore over a LevelDB database.
type Store struct {
	db  *leveldb.DB
	now func() time.Time
}

// Open opens or creates the database directory at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("leveldb path is required")
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb: %w", err)
	}
	return New(db), nil
}

// New wraps an already open database. Close closes db.
func New(db *leveldb.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	raw, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leveldb get %s: %w", key, err)
	}
	if len(raw) < expiryLen {
		_ = s.db.Delete([]byte(key), nil)
		return nil, false, nil
	}

	expires := int64(binary.BigEndian.Uint64(raw[:expiryLen]))
	if expires != 0 && s.now().UnixMilli() >= expires {
		if err := s.db.Delete([]byte(key), nil); err != nil {
			return nil, false, fmt.Errorf("leveldb delete expired %s: %w", key, err)
		}
		return nil, false, nil
	}
	return raw[expiryLen:], true, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var expires int64
	if ttl > 0 {
		expires = s.now().Add(ttl).UnixMilli()
	}
	buf := make([]byte, expiryLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expires))
	copy(buf[expiryLen:], value)

	if err := s.db.Put([]byte(key), buf, nil); err != nil {
		return fmt.Errorf("leveldb put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Delete([]byte(key), nil); err != nil {
		return fmt.Errorf("leveldb delete %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key starting with prefix in one batch.
func (s *Store) Clear(ctx context.Context, prefix string) error {
	iter := s.db.NewIterator(ldb_util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch.Delete(append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		return fmt.Errorf("leveldb iterate %q: %w", prefix, err)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldb clear %q: %w", prefix, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
