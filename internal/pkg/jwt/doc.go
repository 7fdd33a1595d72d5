// Package jwt issues and validates the bearer credential that binds a
// verified phone number to later requests.
//
// Tokens are HS512 signed with a process-wide secret of at least 64 bytes and
// carry the phone as subject plus iat, nbf, exp, iss, aud and a UUIDv7 jti.
// Expiry is evaluated against an injected clock.
package jwt
