// Package hash provides helpers for hashing and verifying secrets.
//
// Callers store only the hashed form and later verify a candidate against it.
// SHA256 serves short-lived one-time passcodes; HMACSHA256 adds a server-side
// key; Bcrypt and Argon2id are slow salted hashes for password-grade secrets.
// All of them satisfy the Hash interface so the choice stays in configuration.
package hash
