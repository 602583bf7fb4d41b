// Package cas derives content addresses for cached artifacts.
//
// Keys are hex encoded BLAKE3 digests. Multi-part keys are length prefixed so
// that ("ab", "c") and ("a", "bc") never collide.
package cas

import (
	"encoding/binary"
	"encoding/hex"
	"regexp"

	"github.com/zeebo/blake3"
)

// hashPattern matches a valid lowercase 256-bit hex digest (64 characters).
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Blake3Hash computes the BLAKE3 hash of the given data.
func Blake3Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Key computes the BLAKE3 hash over the given parts.
func Key(parts ...string) string {
	h := blake3.New()
	var size [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsValidHash reports whether s looks like a digest produced by this package.
func IsValidHash(s string) bool {
	return hashPattern.MatchString(s)
}
