// Package daily picks the verse of the day deterministically from a date and
// a server-side salt, so every simulator instance with the same salt and
// corpus serves the same daily game.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// VerseIndex returns a deterministic index for a date using
// HMAC-SHA256(salt, YYYY-MM-DD) % n. It returns 0 when n <= 0.
func VerseIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
