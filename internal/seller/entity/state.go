package entity

import "fmt"

// State is the onboarding lifecycle of a seller. Values only move forward,
// one step at a time.
type State int16

const (
	StateUnknown               State = 0
	StateUnverified            State = 1
	StateMobileVerified        State = 2
	StateEmailVerified         State = 3
	StateRegistrationCompleted State = 4
)

var stateNames = map[State]string{
	StateUnverified:            "unverified",
	StateMobileVerified:        "mobile_verified",
	StateEmailVerified:         "email_verified",
	StateRegistrationCompleted: "registration_completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// ParseState is the inverse of String. Unrecognized names yield StateUnknown.
func ParseState(name string) State {
	for s, n := range stateNames {
		if n == name {
			return s
		}
	}
	return StateUnknown
}

// Advance returns the state reached by moving to target. Reaching a state at
// or below the current one is a no-op; skipping a step is refused.
func (s State) Advance(target State) (State, error) {
	if !s.IsValid() || !target.IsValid() {
		return s, fmt.Errorf("%w: %s -> %s", ErrStateTransition, s, target)
	}
	switch {
	case target <= s:
		return s, nil
	case target == s+1:
		return target, nil
	default:
		return s, fmt.Errorf("%w: %s -> %s", ErrStateTransition, s, target)
	}
}
