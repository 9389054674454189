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


// Package search provides hybrid lexical and semantic retrieval over the
// portfolio corpus.
//
// An Engine queries a keyword index and a vector index concurrently, merges
// their results (keyword hits first, duplicates dropped by exact text),
// truncates the merged list to k and re-ranks it with a Reranker. The
// Reranker adds up intent bonuses: a category bonus when the query contains
// one of the category's trigger words and the passage mentions its
// vocabulary, bonuses for query phrases found verbatim, for long query words
// and for recency when the query asks about the present.
//
// # Usage
//
//	engine, err := search.NewEngine(keywordIndex, vectorIndex)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	passages, err := engine.Search(ctx, "where does he work", search.DefaultK)
//
// Pass a Monitor to SearchWithMonitor to observe each stage.
package search
