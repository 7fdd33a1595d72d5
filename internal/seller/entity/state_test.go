package entity

import (
	"errors"
	"testing"
)

func TestState_Advance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    State
		to      State
		want    State
		wantErr bool
	}{
		{name: "unverified to mobile", from: StateUnverified, to: StateMobileVerified, want: StateMobileVerified},
		{name: "mobile to email", from: StateMobileVerified, to: StateEmailVerified, want: StateEmailVerified},
		{name: "email to completed", from: StateEmailVerified, to: StateRegistrationCompleted, want: StateRegistrationCompleted},
		{name: "re-verify phone keeps email state", from: StateEmailVerified, to: StateMobileVerified, want: StateEmailVerified},
		{name: "completed stays completed", from: StateRegistrationCompleted, to: StateRegistrationCompleted, want: StateRegistrationCompleted},
		{name: "skip mobile", from: StateUnverified, to: StateEmailVerified, want: StateUnverified, wantErr: true},
		{name: "complete from mobile", from: StateMobileVerified, to: StateRegistrationCompleted, want: StateMobileVerified, wantErr: true},
		{name: "complete from unverified", from: StateUnverified, to: StateRegistrationCompleted, want: StateUnverified, wantErr: true},
		{name: "unknown source", from: StateUnknown, to: StateUnverified, want: StateUnknown, wantErr: true},
		{name: "unknown target", from: StateUnverified, to: State(9), want: StateUnverified, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.from.Advance(tt.to)

			if tt.wantErr != (err != nil) {
				t.Fatalf("Advance() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrStateTransition) {
				t.Fatalf("expected ErrStateTransition, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("Advance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestState_NeverRegresses(t *testing.T) {
	t.Parallel()

	all := []State{StateUnverified, StateMobileVerified, StateEmailVerified, StateRegistrationCompleted}
	for _, from := range all {
		for _, to := range all {
			got, _ := from.Advance(to)
			if got < from {
				t.Fatalf("%s -> %s regressed to %s", from, to, got)
			}
		}
	}
}

func TestState_StringAndParse(t *testing.T) {
	t.Parallel()

	for _, s := range []State{StateUnverified, StateMobileVerified, StateEmailVerified, StateRegistrationCompleted} {
		if got := ParseState(s.String()); got != s {
			t.Fatalf("ParseState(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if StateUnknown.String() != "unknown" || ParseState("banned") != StateUnknown {
		t.Fatal("unknown state handling broken")
	}
}

func TestChannel_VerifiedState(t *testing.T) {
	t.Parallel()

	if ChannelPhone.VerifiedState() != StateMobileVerified || ChannelEmail.VerifiedState() != StateEmailVerified {
		t.Fatal("unexpected verified state mapping")
	}
	if Channel("sms").IsValid() || Channel("sms").VerifiedState() != StateUnknown {
		t.Fatal("unknown channel should be invalid")
	}
}
