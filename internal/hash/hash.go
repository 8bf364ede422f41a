package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Length is the number of characters in a hex-encoded fingerprint.
const Length = sha256.Size * 2

// Sum returns the hex-encoded SHA-256 fingerprint of data.
// It is the dedup and addressing key for stored content: deterministic,
// unsalted, stable across processes and instances. It is not used as a
// security primitive against adversarial collisions.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsValid reports whether s is a well-formed lowercase hex fingerprint.
func IsValid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
