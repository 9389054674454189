// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/folio/storage"
)

// CacheStore implements storage.CacheStore for BadgerDB.
type CacheStore struct {
	backend *Backend
	owned   bool
	logger  *slog.Logger
}

var _ storage.CacheStore = (*CacheStore)(nil)

// NewCacheStore opens (or creates) a BadgerDB database at path and returns a
// cache store that owns it.
func NewCacheStore(path string) (storage.CacheStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newCacheStore(backend, true), nil
}

// NewCacheStoreWithBackend returns a cache store on a shared backend.
// Closing the store leaves the backend open.
func NewCacheStoreWithBackend(backend *Backend) storage.CacheStore {
	return newCacheStore(backend, false)
}

func newCacheStore(backend *Backend, owned bool) *CacheStore {
	return &CacheStore{
		backend: backend,
		owned:   owned,
		logger:  backend.logger.With("store", "cache"),
	}
}

func (s *CacheStore) checkOpen() error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Put inserts or replaces the entry for entry.Query.
func (s *CacheStore) Put(ctx context.Context, entry *storage.CacheEntry) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCacheEntryKey(entry.Query), storage.MarshalCacheEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes the entry for query.
func (s *CacheStore) Delete(ctx context.Context, query string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCacheEntryKey(query)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// All returns every stored entry ordered by LastAccess, oldest first.
// Entries that fail to decode are skipped and logged.
func (s *CacheStore) All(ctx context.Context) ([]*storage.CacheEntry, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	var entries []*storage.CacheEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(cacheEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry *storage.CacheEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalCacheEntry(val)
				return err
			})
			if err != nil {
				s.logger.Warn("skipping unreadable cache entry", "key", string(iter.Item().Key()), "err", err)
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(entries, func(a, b *storage.CacheEntry) int {
		return a.LastAccess.Compare(b.LastAccess)
	})
	return entries, nil
}

// Clear removes every cache entry.
func (s *CacheStore) Clear(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	return s.backend.DropPrefix([]byte(cacheEntryPrefix))
}

// Close closes the underlying database when the store owns it.
func (s *CacheStore) Close() error {
	if !s.owned || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}
