package object

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash is a 64-character lowercase hex-encoded SHA-256 digest.
type Hash string

// HashSize is the length of a hex-encoded Hash.
const HashSize = sha256.Size * 2

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash. Objects carry no type envelope, so this is
// also the name an object is stored under.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// Valid reports whether h is a well-formed object hash.
func (h Hash) Valid() bool {
	if len(h) != HashSize {
		return false
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Short returns the 7-character prefix used in CLI output.
func (h Hash) Short() string {
	const n = 7
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}
