package hash

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverSHA256 selects the unsalted SHA-256 digest.
	DriverSHA256 = "sha256"
	// DriverHMACSHA256 selects the keyed HMAC SHA-256 digest.
	DriverHMACSHA256 = "hmac-sha256"
	// DriverBcrypt selects bcrypt.
	DriverBcrypt = "bcrypt"
	// DriverArgon2id selects Argon2id.
	DriverArgon2id = "argon2id"
)

// ErrUnknownDriver indicates an unsupported hash name.
var ErrUnknownDriver = errors.New("hash: unknown driver")

// FactoryOptions carries the secrets each hasher may need.
type FactoryOptions struct {
	HMACSecret     string
	BcryptCost     int
	BcryptPepper   string
	Argon2idPepper string
}

// FromName builds a Hash by name. An empty name means DriverSHA256.
func FromName(name string, opts FactoryOptions) (Hash, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "", DriverSHA256:
		return NewSHA256(), nil
	case DriverHMACSHA256:
		return NewHMACSHA256(opts.HMACSecret), nil
	case DriverBcrypt:
		return NewBcrypt(opts.BcryptCost, opts.BcryptPepper), nil
	case DriverArgon2id:
		return NewArgon2id(opts.Argon2idPepper), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, name)
	}
}
