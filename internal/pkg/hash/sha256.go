package hash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SHA256 is an unkeyed, unsalted digest rendered as lower-case hex.
//
// It is only suitable for short-lived secrets such as one-time passcodes
// where the same input must always produce the same stored value.
type SHA256 struct{}

// NewSHA256 returns a SHA256 hasher.
func NewSHA256() *SHA256 {
	return &SHA256{}
}

// Hash returns the 64-character hex digest of str.
func (*SHA256) Hash(str string) ([]byte, error) {
	sum := sha256.Sum256([]byte(str))
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum[:])
	return out, nil
}

// Verify compares the digest of str with hashed in constant time.
func (s *SHA256) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}
	expected, _ := s.Hash(str) //nolint:errcheck // never fails
	return subtle.ConstantTimeCompare([]byte(hashed), expected) == 1
}
