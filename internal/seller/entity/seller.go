package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrCooldownActive  = errors.New("seller: otp cooldown is active")
	ErrInvalidOtp      = errors.New("seller: otp does not match")
	ErrOtpExpired      = errors.New("seller: otp expired or not requested")
	ErrSellerNotFound  = errors.New("seller: not found")
	ErrDeliveryFailure = errors.New("seller: otp delivery failed")
	ErrStateTransition = errors.New("seller: state transition not allowed")
)

// Seller is an onboarding principal keyed by phone number.
type Seller struct {
	ID    int64
	Phone string
	Email string

	FirstName  string
	MiddleName string
	LastName   string
	City       string
	Pincode    string

	// OtpHash is empty when no code is pending.
	OtpHash          string
	OtpExpiresAt     *time.Time
	OtpRetryCount    int
	OtpCooldownUntil *time.Time

	State State
	// Version is the optimistic lock token; 0 means never persisted.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSeller returns an unpersisted, unverified seller for phone.
func NewSeller(id int64, phone string) Seller {
	return Seller{ID: id, Phone: phone, State: StateUnverified}
}

// OtpPending reports whether a code is outstanding, expired or not.
func (s Seller) OtpPending() bool {
	return s.OtpHash != "" && s.OtpExpiresAt != nil
}

// OtpExpired reports whether the pending code is past its expiry. A code is
// already expired at the exact expiry instant.
func (s Seller) OtpExpired(now time.Time) bool {
	return s.OtpExpiresAt == nil || !now.Before(*s.OtpExpiresAt)
}

// ClearOtp drops the pending code. Retry and cooldown bookkeeping stays.
func (s *Seller) ClearOtp() {
	s.OtpHash = ""
	s.OtpExpiresAt = nil
}

// ApplyOtp stores a freshly issued code and the policy outcome.
func (s *Seller) ApplyOtp(hash string, expiresAt time.Time, d OtpDecision) {
	s.OtpHash = hash
	s.OtpExpiresAt = &expiresAt
	s.OtpRetryCount = d.RetryCount
	s.OtpCooldownUntil = d.CooldownUntil
}

// MarkVerified clears the pending code and restarts the retry window.
func (s *Seller) MarkVerified(state State) {
	s.ClearOtp()
	s.OtpCooldownUntil = nil
	s.OtpRetryCount = 1
	s.State = state
}

// MaskEmail keeps the first character of the local part and the domain.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return ""
	}
	return local[:1] + "***@" + domain
}
