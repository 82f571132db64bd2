package multicode

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

const shortIDLen = 6

// NewID returns a fresh random identifier for graph elements
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the last six identifier-safe characters of an id.
// It is used as a suffix for generated names (gate_<short>_open).
// Ids with no usable characters fall back to a hash of the id.
func ShortID(id string) string {
	safe := make([]rune, 0, len(id))
	for _, r := range id {
		if isIdentRune(r) && r != '_' {
			safe = append(safe, r)
		}
	}
	if len(safe) == 0 {
		return fmt.Sprintf("%06x", Seed(id)&0xffffff)
	}
	if len(safe) > shortIDLen {
		safe = safe[len(safe)-shortIDLen:]
	}
	return string(safe)
}

// Seed derives a stable 32-bit value from a string. Generated programs use
// it to seed per-node random engines so repeated generation of the same
// graph is reproducible.
func Seed(s string) uint32 {
	return uint32(xxhash.Sum64String(s))
}
