// Package clock is the time source for OTP expiry, cooldown and token
// lifetimes.
//
// Code depends on Clocker rather than time.Now so tests can pin the instant
// with a Manual clock and step it across expiry and cooldown boundaries.
package clock
