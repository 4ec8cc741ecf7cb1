package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID string.
func NewID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ValidID reports whether s parses as a ULID. Request-supplied entity ids
// are checked with this before touching the database.
func ValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
