// Package query rewrites visitor questions before retrieval.
//
// Expand resolves follow-up questions ("Where can I read it?") by prepending
// the previous user question when the new one contains a bare pronoun, then
// appends at most three related terms from a fixed synonym table. The result
// feeds the search engine only; it is never shown to the visitor or sent to
// the language model.
//
// ClassifyIntent maps a question to a coarse topic for diagnostics.
package query
