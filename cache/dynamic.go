package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/folio/core"
	"github.com/poiesic/folio/storage"
)

type entry struct {
	query       string
	vector      []float32
	response    string
	accessCount int64
	lastAccess  time.Time
}

func (e *entry) record() *storage.CacheEntry {
	return &storage.CacheEntry{
		Query:       e.query,
		Vector:      e.vector,
		Response:    e.response,
		AccessCount: e.accessCount,
		LastAccess:  e.lastAccess,
	}
}

func entryFromRecord(r *storage.CacheEntry) *entry {
	return &entry{
		query:       r.Query,
		vector:      r.Vector,
		response:    r.Response,
		accessCount: r.AccessCount,
		lastAccess:  r.LastAccess,
	}
}

// dynamicTier wraps an LRU keyed by query text. Callers hold Cache.mu around
// every method; evicted collects keys dropped by the most recent add.
type dynamicTier struct {
	entries *lru.Cache[string, *entry]
	evicted []string
}

func newDynamicTier(capacity int) (*dynamicTier, error) {
	d := &dynamicTier{}
	entries, err := lru.NewWithEvict[string, *entry](capacity, func(key string, _ *entry) {
		d.evicted = append(d.evicted, key)
	})
	if err != nil {
		return nil, err
	}
	d.entries = entries
	return d, nil
}

// find returns the least recently used entry whose similarity to vector
// reaches threshold.
func (d *dynamicTier) find(vector []float32, threshold float32) (*entry, float32, bool) {
	for _, key := range d.entries.Keys() {
		e, ok := d.entries.Peek(key)
		if !ok {
			continue
		}
		if sim := core.Cosine(vector, e.vector); sim >= threshold {
			return e, sim, true
		}
	}
	return nil, 0, false
}

// touch promotes e to most recently used and counts the access.
func (d *dynamicTier) touch(e *entry, now time.Time) {
	d.entries.Get(e.query)
	e.accessCount++
	e.lastAccess = now
}

// add inserts e and returns the keys evicted to make room.
func (d *dynamicTier) add(e *entry) []string {
	d.evicted = d.evicted[:0]
	d.entries.Add(e.query, e)
	if len(d.evicted) == 0 {
		return nil
	}
	return append([]string(nil), d.evicted...)
}

func (d *dynamicTier) len() int {
	return d.entries.Len()
}

func (d *dynamicTier) totalAccesses() int64 {
	var total int64
	for _, key := range d.entries.Keys() {
		if e, ok := d.entries.Peek(key); ok {
			total += e.accessCount
		}
	}
	return total
}

// queries returns the cached queries from least to most recently used.
func (d *dynamicTier) queries() []string {
	return d.entries.Keys()
}
