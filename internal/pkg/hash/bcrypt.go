package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt hashes with bcrypt. The pepper is appended before hashing and must
// live in configuration, never next to the hashes.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt hasher. Out-of-range costs fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

// Hash returns the bcrypt encoding of str.
func (b *Bcrypt) Hash(str string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(str+b.pepper), b.cost)
}

// Verify reports whether str matches hashed.
func (b *Bcrypt) Verify(hashed, str string) bool {
	if hashed == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(str+b.pepper)) == nil
}
