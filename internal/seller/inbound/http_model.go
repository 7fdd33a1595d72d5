package inbound

import (
	"net/http"
	"time"
)

type PhoneOtpRequest struct {
	MobileNumber string `json:"mobile_number"`
}

type PhoneOtpVerifyRequest struct {
	MobileNumber string `json:"mobile_number"`
	Otp          string `json:"otp"`
}

type EmailOtpRequest struct {
	Email string `json:"email"`
}

type EmailOtpVerifyRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type OtpSentResponse struct{}

func (OtpSentResponse) Message() string { return "OTP sent successfully" }

type PhoneVerifiedResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`

	cookie *http.Cookie
}

func (PhoneVerifiedResponse) Message() string { return "Mobile verified successfully" }

func (r PhoneVerifiedResponse) Cookies() []*http.Cookie {
	if r.cookie == nil {
		return nil
	}
	return []*http.Cookie{r.cookie}
}

type EmailVerifiedResponse struct{}

func (EmailVerifiedResponse) Message() string { return "Email verified successfully" }

type RegistrationRequest struct {
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	LastName   string `json:"last_name"`
	City       string `json:"city"`
	Pincode    string `json:"pincode"`
}

type RegistrationResponse struct{}

func (RegistrationResponse) Message() string { return "Registration completed" }

type ProfileResponse struct {
	ID           int64     `json:"id,string"`
	MobileNumber string    `json:"mobile_number"`
	Email        string    `json:"email,omitempty"`
	State        string    `json:"state"`
	FirstName    string    `json:"first_name,omitempty"`
	MiddleName   string    `json:"middle_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	City         string    `json:"city,omitempty"`
	Pincode      string    `json:"pincode,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
