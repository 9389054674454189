package badger

import (
	"encoding/binary"

	"github.com/poiesic/folio/core"
)

// Key prefixes for different data types
const (
	cacheEntryPrefix = "cachent:"
)

// makeCacheEntryKey generates the key for a cache entry from its query text.
// Format: prefix + 8 byte BigEndian content hash
func makeCacheEntryKey(query string) []byte {
	buf := make([]byte, len(cacheEntryPrefix)+8)
	offset := copy(buf, cacheEntryPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(query)))
	return buf
}
