// Package config reads runtime settings by dotted key (for example
// "modules.seller.otp.expiry_minutes").
//
// Missing keys yield zero values. Durations are stored as plain integers and
// read through the unit-specific getters. Arrays are comma separated and
// binary values are base64.
package config

import (
	"io"
	"time"
)

// Config is the read-only view of the service configuration.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond reads an integer as a number of seconds.
	GetSecond(key string) time.Duration
	// GetMinute reads an integer as a number of minutes.
	GetMinute(key string) time.Duration
	GetMillisecond(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte
	// GetArray splits a comma separated value, dropping blanks.
	GetArray(key string) []string
}
