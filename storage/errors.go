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

import "errors"

var (
	// ErrNotFound is returned when a snapshot artifact does not exist.
	ErrNotFound = errors.New("artifact not found")

	// ErrStorageClosed is returned by a CacheStore used after Close.
	ErrStorageClosed = errors.New("cache store is closed")

	// ErrSerializationFailed marks an artifact or cache entry that cannot be
	// decoded: wrong magic, unknown version or trailing bytes.
	ErrSerializationFailed = errors.New("malformed encoding")

	// ErrTruncatedData marks input that ends in the middle of a value.
	ErrTruncatedData = errors.New("truncated data")
)
