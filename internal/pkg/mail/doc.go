// Package mail sends plain-text and HTML email.
//
// SMTP talks to a relay with net/smtp. Retrying wraps any Mail and retries
// transient failures with exponential backoff.
package mail
