package core

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Hash represents a short content fingerprint
type Hash string

// NewHash creates a new hash from data, truncated to 16 hex characters so it
// stays usable inside directory names
func NewHash(data []byte) Hash {
	sum := sha1.Sum(data)
	return Hash(hex.EncodeToString(sum[:])[:16])
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// FingerprintFile derives a dataset fingerprint from file identity. Basename,
// size and mtime together are stable across re-uploads of the same file but
// change when the content is replaced.
func FingerprintFile(basename string, size int64, modUnixMillis int64) Hash {
	return NewHash([]byte(fmt.Sprintf("%s|%d|%d", basename, size, modUnixMillis)))
}
