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


// Package chat runs the question answering pipeline for a portfolio corpus.
//
// An Engine owns the indices, built once by Initialize, and serves any number
// of Sessions. Every message goes through the same steps: greeting check,
// semantic cache lookup, query expansion with the session history, hybrid
// search, answer generation, then cache insert and history update.
//
// Sessions serialize their own messages. Engine state is read-only after
// Initialize and the cache does its own locking, so sessions run in
// parallel.
package chat
