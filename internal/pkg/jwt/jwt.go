package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidSigningMethod is returned when the token is not HS512.
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")

	// ErrSigningKeyTooShort is returned when the HS512 signing key is less than 64 bytes.
	ErrSigningKeyTooShort = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")

	// ErrInvalidTTL is returned when the token lifetime is not positive.
	ErrInvalidTTL = errors.New("JWT lifetime must be positive")

	// ErrTokenExpired is returned when the token has expired.
	ErrTokenExpired = errors.New("JWT token has expired")

	// ErrInvalidToken is returned when the token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
)

// JWT issues and checks bearer credentials bound to a subject.
type JWT interface {
	// Generate returns a signed token for subject.
	Generate(subject string) (string, error)
	// Issue is Generate that also reports when the token expires.
	Issue(subject string) (Token, error)
	// Verify parses and validates the token and returns its claims.
	Verify(tokenStr string) (Claims, error)
	// Validate returns the subject of a fully valid token. It never fails.
	Validate(tokenStr string) (string, bool)
	// ExtractSubject reads the subject of a token already validated by the caller.
	ExtractSubject(tokenStr string) string
	// TTL is the lifetime given to new tokens.
	TTL() time.Duration
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config defines the inputs for building a JWT implementation.
type Config struct {
	Secret    []byte
	Issuer    string
	Audiences []string
	TTL       time.Duration
	Clock     clocker
	UUID      generator
}

// Token is a signed credential and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Claims are the registered claims carried by the credential. Subject holds
// the verified phone number.
type Claims struct {
	jwt.RegisteredClaims
}

// GetAuth returns the claims stored in ctx, if any.
func GetAuth(ctx context.Context) *Claims {
	clm, ok := ctx.Value(jwtContextKey{}).(Claims)
	if !ok {
		return nil
	}

	return &clm
}

// SetAuth stores claims in ctx.
func SetAuth(ctx context.Context, clm Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, clm)
}

// SubjectFromContext returns the authenticated subject, or "" when the
// request carries no identity.
func SubjectFromContext(ctx context.Context) string {
	if clm := GetAuth(ctx); clm != nil {
		return clm.Subject
	}
	return ""
}
