// Package otp generates the six-digit one-time passcodes sent during seller
// onboarding.
//
// Codes are drawn uniformly from 000000-999999 using crypto/rand. A fixed
// "golden" code can replace the random draw for scripted test environments;
// it must be switched on explicitly and is refused when the service runs
// with the production environment name.
package otp
