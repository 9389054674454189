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


// Package cache answers repeated questions without running retrieval or the
// language model.
//
// The cache has two tiers, both matched by cosine similarity between query
// embeddings:
//
//   - The static tier holds curated FAQ categories. Each category has example
//     phrasings and interchangeable responses; hits rotate through the
//     responses round-robin.
//   - The dynamic tier learns from traffic. Generated answers that look
//     useful are inserted under their query, in a bounded LRU. A lookup scans
//     entries from least to most recently used and the first entry above the
//     threshold wins and becomes most recently used.
//
// With a storage.CacheStore attached, dynamic entries are written through and
// restored by Warm, oldest access first, so recency order survives restarts.
//
// All methods are safe for concurrent use.
package cache
