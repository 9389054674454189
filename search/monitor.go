package search

import (
	"fmt"
	"io"

	"github.com/poiesic/folio/index"
)

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// A failed retriever reports its error and no hits.
type Monitor interface {
	Start(query string, k int)
	AfterKeyword(hits []index.Scored, err error)
	AfterVector(hits []index.Scored, err error)
	AfterMerge(candidates []string)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                 {}
func (n *noopMonitor) AfterKeyword(_ []index.Scored, _ error) {}
func (n *noopMonitor) AfterVector(_ []index.Scored, _ error)  {}
func (n *noopMonitor) AfterMerge(_ []string)                  {}
func (n *noopMonitor) Finish(_ []Result)                      {}

// TraceMonitor prints every stage to a writer.
type TraceMonitor struct {
	w       io.Writer
	preview int
}

var _ Monitor = (*TraceMonitor)(nil)

// NewTraceMonitor returns a monitor that writes to w, cutting passages to
// preview runes.
func NewTraceMonitor(w io.Writer, preview int) *TraceMonitor {
	return &TraceMonitor{w: w, preview: preview}
}

func (m *TraceMonitor) Start(query string, k int) {
	fmt.Fprintf(m.w, "query: %q (k=%d)\n", query, k)
}

func (m *TraceMonitor) AfterKeyword(hits []index.Scored, err error) {
	m.hits("keyword", hits, err)
}

func (m *TraceMonitor) AfterVector(hits []index.Scored, err error) {
	m.hits("vector", hits, err)
}

func (m *TraceMonitor) AfterMerge(candidates []string) {
	fmt.Fprintf(m.w, "merged: %d candidates\n", len(candidates))
}

func (m *TraceMonitor) Finish(results []Result) {
	fmt.Fprintf(m.w, "reranked:\n")
	for i, r := range results {
		fmt.Fprintf(m.w, "  %2d [%5.1f] %s %s\n", i+1, r.Score, r.sources(), m.cut(r.Text))
	}
}

func (m *TraceMonitor) hits(stage string, hits []index.Scored, err error) {
	if err != nil {
		fmt.Fprintf(m.w, "%s: failed: %v\n", stage, err)
		return
	}
	fmt.Fprintf(m.w, "%s: %d hits\n", stage, len(hits))
	for _, h := range hits {
		fmt.Fprintf(m.w, "  [%.3f] %s\n", h.Score, h.DocID)
	}
}

func (m *TraceMonitor) cut(text string) string {
	runes := []rune(text)
	if m.preview <= 0 || len(runes) <= m.preview {
		return text
	}
	return string(runes[:m.preview]) + "..."
}
