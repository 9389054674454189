// Package index holds folio's two retrieval indices over the portfolio corpus.
//
// KeywordIndex scores documents by exact overlap between query tokens and a
// document's keywords (weighted twice) and text tokens. VectorIndex ranks
// documents by inner product between L2-normalized embeddings, which equals
// cosine similarity; it is a brute-force flat index, adequate for corpora of
// tens or hundreds of passages.
//
// A Builder embeds a corpus on a bounded worker pool. Built indices can be
// saved as two artifacts and reloaded with Load, which refuses snapshots that
// no longer match the corpus fingerprint or embedding model.
//
// Both indices are immutable once constructed and safe for concurrent searches.
package index
