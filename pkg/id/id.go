// Package id generates the unique note identifiers used as join keys
// with the remote store.
package id

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

var fallback = struct {
	mu  sync.Mutex
	rng *rand.Rand
}{
	rng: rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(os.Getpid()))),
}

// New returns a canonical version 4 UUID string from the system's
// cryptographic random source. If that source is unavailable it degrades
// to a pseudo-random UUID seeded from time and PID: still unique enough
// for a single client's note collection, but weaker than the primary
// path and not suitable where collision resistance matters.
func New() string {
	u, err := uuid.NewRandom()
	if err != nil {
		return pseudoUUID()
	}
	return u.String()
}

func pseudoUUID() string {
	var b [16]byte

	fallback.mu.Lock()
	binary.LittleEndian.PutUint64(b[:8], fallback.rng.Uint64())
	binary.LittleEndian.PutUint64(b[8:], fallback.rng.Uint64())
	fallback.mu.Unlock()

	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant

	return fmt.Sprintf("%x-%x-%x-%x-%x", b[:4], b[4:6], b[6:8], b[8:10], b[10:])
}
