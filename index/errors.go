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


package index

import "errors"

var (
	// ErrEmbedderRequired is returned when an index or builder is created without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmptyCorpus is returned when building an index from no documents.
	ErrEmptyCorpus = errors.New("corpus has no documents")

	// ErrSnapshotInvalid is returned by Load when persisted artifacts are
	// missing, unreadable or do not match the current corpus and model.
	// Callers rebuild the index when they see it.
	ErrSnapshotInvalid = errors.New("index snapshot invalid")

	// ErrDimensionMismatch is returned when vectors of different lengths are mixed.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned when documents and vectors do not pair up.
	ErrCountMismatch = errors.New("document and vector counts differ")
)
