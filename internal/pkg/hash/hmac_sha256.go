package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HMACSHA256 is a keyed SHA-256 digest rendered as lower-case hex.
type HMACSHA256 struct {
	key []byte
}

// NewHMACSHA256 returns a hasher keyed with secret.
func NewHMACSHA256(secret string) *HMACSHA256 {
	return &HMACSHA256{key: []byte(secret)}
}

// Hash returns the hex HMAC of str.
func (h *HMACSHA256) Hash(str string) ([]byte, error) {
	return h.sum(str), nil
}

// Verify compares the HMAC of str with hashed in constant time.
func (h *HMACSHA256) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hashed), h.sum(str)) == 1
}

func (h *HMACSHA256) sum(str string) []byte {
	mac := hmac.New(sha256.New, h.key)
	mac.Write([]byte(str))
	return []byte(hex.EncodeToString(mac.Sum(nil)))
}
