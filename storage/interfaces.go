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


package storage

import "context"

// CacheStore persists dynamic answer cache entries across restarts.
// Entries are keyed by their query text.
//
// Implementations must be safe for concurrent use.
type CacheStore interface {
	// Put inserts or replaces the entry for entry.Query.
	Put(ctx context.Context, entry *CacheEntry) error

	// Delete removes the entry for query. Deleting a missing entry is not an error.
	Delete(ctx context.Context, query string) error

	// All returns every stored entry ordered by LastAccess, oldest first.
	All(ctx context.Context) ([]*CacheEntry, error)

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
