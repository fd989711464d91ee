package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
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

// Fingerprint accumulates float64 values bit-exactly and hashes them. Two
// sequences hash equal only if every value has the same IEEE-754 bits.
type Fingerprint struct {
	buf []byte
}

// Add appends values to the fingerprint
func (f *Fingerprint) Add(values ...float64) {
	var b [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
		f.buf = append(f.buf, b[:]...)
	}
}

// Sum returns the hash of everything added so far
func (f *Fingerprint) Sum() Hash {
	return NewHash(f.buf)
}
