package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ContentHash identifies a dataset snapshot together with the column list that was
// profiled. Two snapshots with the same rows and columns share a ContentHash.
type ContentHash Hash

// NewContentHash hashes a canonical serialization of a dataset snapshot.
func NewContentHash(data []byte) ContentHash { return ContentHash(NewHash(data)) }

func (h ContentHash) String() string { return Hash(h).String() }

// Short returns the first 12 hex digits, enough for log lines
func (h ContentHash) Short() string {
	if len(h) > 12 {
		return string(h[:12])
	}
	return string(h)
}
