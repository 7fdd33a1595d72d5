package entity

import "time"

// OtpOutcome is the verdict of OtpPolicy.Evaluate.
type OtpOutcome int

const (
	OtpAllow OtpOutcome = iota + 1
	OtpAllowReset
	OtpDenyCooldown
)

func (o OtpOutcome) String() string {
	switch o {
	case OtpAllow:
		return "allow"
	case OtpAllowReset:
		return "allow_reset"
	case OtpDenyCooldown:
		return "deny_cooldown"
	default:
		return "unknown"
	}
}

// OtpDecision carries the retry bookkeeping to persist when a code is issued.
type OtpDecision struct {
	Outcome       OtpOutcome
	RetryCount    int
	CooldownUntil *time.Time
}

// Allowed reports whether a new code may be issued.
func (d OtpDecision) Allowed() bool {
	return d.Outcome == OtpAllow || d.Outcome == OtpAllowReset
}

// OtpPolicy bounds how many codes may be issued before a cooloff.
type OtpPolicy struct {
	Ceiling int
	Cooloff time.Duration
}

// Evaluate decides whether another code may be issued given the current
// retry count and cooldown. It has no side effects.
//
// Below the ceiling the count is incremented and, on reaching the ceiling,
// the cooldown starts. At or above the ceiling the request is refused until
// the cooldown has passed, after which the window resets with a count of 1.
func (p OtpPolicy) Evaluate(retryCount int, cooldownUntil *time.Time, now time.Time) OtpDecision {
	if retryCount < p.Ceiling {
		next := retryCount + 1
		until := cooldownUntil
		if next == p.Ceiling {
			t := now.Add(p.Cooloff)
			until = &t
		}
		return OtpDecision{Outcome: OtpAllow, RetryCount: next, CooldownUntil: until}
	}

	if cooldownUntil != nil && now.Before(*cooldownUntil) {
		return OtpDecision{Outcome: OtpDenyCooldown, RetryCount: retryCount, CooldownUntil: cooldownUntil}
	}

	return OtpDecision{Outcome: OtpAllowReset, RetryCount: 1}
}
