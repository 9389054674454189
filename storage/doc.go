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


// Package storage holds folio's persistence formats and store interfaces.
//
// Two kinds of data outlive a process:
//
//   - Index snapshots: the document list and its embedding matrix, written as
//     two binary artifacts (data.bin and index.bin) by SaveSnapshot. Each
//     artifact starts with a magic string, a format version and the corpus
//     fingerprint, so a reader can tell whether a snapshot still matches the
//     corpus it was built from.
//   - Answer cache entries, persisted through a CacheStore. The badger
//     subpackage provides the BadgerDB implementation.
//
// Encoding uses mus-go serializers composed by hand in serialization.go.
//
// # Usage
//
//	store, err := badger.NewCacheStore("/var/lib/folio/cache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryCacheStore()
//
// All CacheStore implementations must be safe for concurrent use.
package storage
