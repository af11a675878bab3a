// Package shared holds small helpers for generating secrets and scrubbing
// them from memory.
package shared

import (
	"crypto/rand"
	"encoding/hex"
)

// RefreshTokenBytes is the amount of randomness behind every refresh token
// (256 bits).
const RefreshTokenBytes = 32

// randRead is a test seam for crypto/rand.
var randRead = rand.Read

// MakeRandHexString reads size random bytes and returns them hex encoded,
// so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := randRead(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// NewRefreshToken returns a fresh opaque refresh token.
func NewRefreshToken() (string, error) {
	return MakeRandHexString(RefreshTokenBytes)
}

// WipeByteArray overwrites b with zeros. Use it for passwords read from the
// terminal once they are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
