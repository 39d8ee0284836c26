package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/recall/core"
)

// Key prefixes for different data types
const (
	snippetPrefix       = "snip"
	snippetRecentPrefix = "snipr"
	cacheEntryPrefix    = "qcache"
)

// makeSnippetKey generates a key for a snippet by ID.
func makeSnippetKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", snippetPrefix, id))
}

// makeRecentKey generates a composite key for the recency index.
// Format: prefix:workspace\x00invertedTimestamp:id
// The timestamp is inverted (^micros) and written BigEndian so that a forward
// lexicographic iteration yields newest records first.
func makeRecentKey(workspaceId string, insertedAt time.Time, id core.ID) []byte {
	prefix := makeRecentPrefix(workspaceId)
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], ^uint64(insertedAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRecentPrefix generates the iteration prefix for a workspace's recency
// index. The NUL byte terminates the workspace id so that one workspace is
// never a prefix of another.
func makeRecentPrefix(workspaceId string) []byte {
	prefix := snippetRecentPrefix + ":" + workspaceId
	buf := make([]byte, len(prefix)+1)
	copy(buf, prefix)
	buf[len(prefix)] = 0x00
	return buf
}

// makeCacheEntryKey generates a key for a query-cache entry.
func makeCacheEntryKey(key core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", cacheEntryPrefix, key))
}
