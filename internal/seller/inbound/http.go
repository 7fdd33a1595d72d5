package inbound

import (
	"context"
	"net/http"

	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/router"
	"github.com/carventure/sellerhub/internal/seller/usecase"
)

const (
	pathPhoneOtp       = "/api/v1/sellers/phone/otp"
	pathPhoneOtpVerify = "/api/v1/sellers/phone/otp/verify"
	pathEmailOtp       = "/api/v1/sellers/email/otp"
	pathEmailOtpVerify = "/api/v1/sellers/email/otp/verify"
	pathRegistration   = "/api/v1/sellers/registration"
	pathProfile        = "/api/v1/sellers/me"
)

type uc interface {
	RequestOtp(ctx context.Context, in usecase.RequestOtpInput) error
	VerifyOtp(ctx context.Context, in usecase.VerifyOtpInput) error
	CompleteRegistration(ctx context.Context, in usecase.CompleteRegistrationInput) error
	Profile(ctx context.Context, in usecase.ProfileInput) (*usecase.ProfileOutput, error)
}

// PublicEndpoints lists the routes reachable before the seller holds a token.
func PublicEndpoints() map[string][]string {
	return map[string][]string{
		http.MethodPost: {pathPhoneOtp, pathPhoneOtpVerify},
	}
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, issuer jwt.JWT, cfg config.Config) {
	end := &HTTPEndpoint{uc: uc, jwt: issuer, cfg: cfg}

	// Mobile verification
	r.POST(pathPhoneOtp, end.PhoneOtp)
	r.POST(pathPhoneOtpVerify, end.PhoneOtpVerify)

	// Email verification (need authenticated)
	r.POST(pathEmailOtp, end.EmailOtp)
	r.POST(pathEmailOtpVerify, end.EmailOtpVerify)

	// Registration (need authenticated)
	r.POST(pathRegistration, end.Registration)
	r.GET(pathProfile, end.Profile)
}
