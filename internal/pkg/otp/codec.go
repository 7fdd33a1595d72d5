package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
)

// Length is the number of digits in a code.
const Length = 6

// EnvProduction is the environment name that disables the golden code.
const EnvProduction = "production"

var (
	// ErrGoldenInProduction is returned when the golden code is enabled in production.
	ErrGoldenInProduction = errors.New("otp: golden code must not be enabled in production")

	// ErrInvalidGoldenCode is returned when the golden code is not six digits.
	ErrInvalidGoldenCode = errors.New("otp: golden code must be exactly 6 digits")
)

var reCode = regexp.MustCompile(`^[0-9]{6}$`)

var upper = big.NewInt(1_000_000)

// Generator produces plaintext codes.
type Generator interface {
	Generate() (string, error)
}

// Golden configures the deterministic test code.
type Golden struct {
	Enabled bool
	Code    string
}

// Config configures a Codec.
type Config struct {
	// Env is the deployment environment name (app.env).
	Env    string
	Golden Golden
	// Rand overrides the entropy source. Nil means crypto/rand.
	Rand io.Reader
}

// Codec generates six-digit codes.
type Codec struct {
	golden string
	rand   io.Reader
}

// NewCodec builds a Codec. The golden code is honored only when enabled,
// non-empty and the environment is not production.
func NewCodec(cfg Config) (*Codec, error) {
	c := &Codec{rand: cfg.Rand}
	if c.rand == nil {
		c.rand = rand.Reader
	}

	if !cfg.Golden.Enabled || cfg.Golden.Code == "" {
		return c, nil
	}

	if strings.EqualFold(strings.TrimSpace(cfg.Env), EnvProduction) {
		return nil, ErrGoldenInProduction
	}
	if !reCode.MatchString(cfg.Golden.Code) {
		return nil, ErrInvalidGoldenCode
	}

	c.golden = cfg.Golden.Code
	return c, nil
}

// GoldenActive reports whether Generate returns the golden code.
func (c *Codec) GoldenActive() bool {
	return c.golden != ""
}

// Generate returns a zero-padded six-digit code.
func (c *Codec) Generate() (string, error) {
	if c.golden != "" {
		return c.golden, nil
	}

	n, err := rand.Int(c.rand, upper)
	if err != nil {
		return "", fmt.Errorf("otp: draw code: %w", err)
	}

	return fmt.Sprintf("%0*d", Length, n.Int64()), nil
}
