// Package idx generates request identifiers.
package idx

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// maxExternalLen bounds request ids accepted from callers.
const maxExternalLen = 64

var (
	mu      sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// NewRequestID returns a lexicographically sortable ULID for the current
// time. Safe for concurrent use.
func NewRequestID() string {
	return NewRequestIDAt(time.Now().UTC())
}

// NewRequestIDAt is NewRequestID pinned to t.
func NewRequestIDAt(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// TimeOf extracts the timestamp embedded in a ULID request id. Ids that
// are not ULIDs (caller supplied) yield the zero time.
func TimeOf(id string) time.Time {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// SanitizeRequestID keeps a caller supplied id only when it is short and
// made of visible ASCII, so it is safe to log and echo back.
func SanitizeRequestID(id string) (string, bool) {
	if id == "" || len(id) > maxExternalLen {
		return "", false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return "", false
		}
	}
	return id, true
}
