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


// Package corpus loads the knowledge base the assistant answers from.
//
// A corpus is a TOML file with three parts:
//
//   - [persona]: who the documents describe, pronouns, the system prompt,
//     greetings and the fixed messages shown when no answer is possible
//   - [[faq]]: curated question phrasings with canned responses, used to
//     seed the static tier of the semantic cache
//   - [[documents]]: the retrievable passages with id, text and metadata
//
// Metadata fields other than category, keywords, priority, date and recency
// are kept as free-form strings; nested tables become dotted keys such as
// "links.github". Documents without keywords get the most frequent
// non stop-word tokens of their text.
//
// A fictional portfolio is embedded and returned by Default.
package corpus
