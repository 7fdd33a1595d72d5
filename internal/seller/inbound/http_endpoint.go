package inbound

import (
	"log/slog"
	"net/http"

	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/router"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"github.com/carventure/sellerhub/internal/seller/usecase"
)

// HTTPEndpoint exposes the seller onboarding handlers.
type HTTPEndpoint struct {
	uc  uc
	jwt jwt.JWT
	cfg config.Config
}

// PhoneOtp issues a code for a mobile number.
// @Summary Request mobile OTP
// @Description Issues a six-digit code for the mobile number, creating the seller on first contact.
// @Tags Seller, Onboarding
// @Accept json
// @Produce json
// @Param request body PhoneOtpRequest true "Mobile number"
// @Success 200 {object} router.successResponse "OTP sent successfully"
// @Failure 403 {object} router.errorResponse "Cooldown period is active"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/sellers/phone/otp [post]
func (h *HTTPEndpoint) PhoneOtp(r *router.Request) (any, error) {
	var req PhoneOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestOtp(r.Context(), usecase.RequestOtpInput{
		Channel:     entity.ChannelPhone,
		Destination: req.MobileNumber,
	}); err != nil {
		return nil, err
	}

	return OtpSentResponse{}, nil
}

// PhoneOtpVerify verifies the mobile code and issues the bearer token.
// @Summary Verify mobile OTP
// @Description Verifies the code and returns a token, also set as an HttpOnly cookie.
// @Tags Seller, Onboarding
// @Accept json
// @Produce json
// @Param request body PhoneOtpVerifyRequest true "Mobile number and code"
// @Success 200 {object} router.successResponse{data=PhoneVerifiedResponse} "Mobile verified successfully"
// @Failure 400 {object} router.errorResponse "Invalid or expired OTP"
// @Failure 404 {object} router.errorResponse "Seller not found"
// @Router /api/v1/sellers/phone/otp/verify [post]
func (h *HTTPEndpoint) PhoneOtpVerify(r *router.Request) (any, error) {
	var req PhoneOtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyOtp(r.Context(), usecase.VerifyOtpInput{
		Channel:  entity.ChannelPhone,
		Identity: req.MobileNumber,
		Code:     req.Otp,
	}); err != nil {
		return nil, err
	}

	token, err := h.jwt.Issue(req.MobileNumber)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue seller token", "error", err)
		return nil, goerror.NewServer(err)
	}

	return PhoneVerifiedResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		cookie:    h.tokenCookie(token),
	}, nil
}

// EmailOtp issues a code for the authenticated seller's email.
// @Summary Request email OTP
// @Tags Seller, Onboarding
// @Accept json
// @Produce json
// @Param request body EmailOtpRequest true "Email"
// @Success 200 {object} router.successResponse "OTP sent successfully"
// @Failure 503 {object} router.errorResponse "Failed to send OTP"
// @Router /api/v1/sellers/email/otp [post]
func (h *HTTPEndpoint) EmailOtp(r *router.Request) (any, error) {
	var req EmailOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.RequestOtp(r.Context(), usecase.RequestOtpInput{
		Channel:     entity.ChannelEmail,
		Destination: req.Email,
		OwnerPhone:  r.Subject(),
	}); err != nil {
		return nil, err
	}

	return OtpSentResponse{}, nil
}

// EmailOtpVerify verifies the email code.
// @Summary Verify email OTP
// @Tags Seller, Onboarding
// @Accept json
// @Produce json
// @Param request body EmailOtpVerifyRequest true "Email and code"
// @Success 200 {object} router.successResponse "Email verified successfully"
// @Failure 403 {object} router.errorResponse "Mobile not verified"
// @Router /api/v1/sellers/email/otp/verify [post]
func (h *HTTPEndpoint) EmailOtpVerify(r *router.Request) (any, error) {
	var req EmailOtpVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.VerifyOtp(r.Context(), usecase.VerifyOtpInput{
		Channel:    entity.ChannelEmail,
		Identity:   req.Email,
		Code:       req.Otp,
		OwnerPhone: r.Subject(),
	}); err != nil {
		return nil, err
	}

	return EmailVerifiedResponse{}, nil
}

// Registration stores the seller profile.
// @Summary Complete registration
// @Tags Seller, Onboarding
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Profile"
// @Success 200 {object} router.successResponse "Registration completed"
// @Failure 403 {object} router.errorResponse "Email not verified"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/sellers/registration [post]
func (h *HTTPEndpoint) Registration(r *router.Request) (any, error) {
	var req RegistrationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.CompleteRegistration(r.Context(), usecase.CompleteRegistrationInput{
		Phone:      r.Subject(),
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		LastName:   req.LastName,
		City:       req.City,
		Pincode:    req.Pincode,
	}); err != nil {
		return nil, err
	}

	return RegistrationResponse{}, nil
}

// Profile returns the onboarding progress of the authenticated seller.
// @Summary Seller profile
// @Tags Seller
// @Produce json
// @Success 200 {object} router.successResponse{data=ProfileResponse}
// @Failure 404 {object} router.errorResponse "Seller not found"
// @Router /api/v1/sellers/me [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	out, err := h.uc.Profile(r.Context(), usecase.ProfileInput{Phone: r.Subject()})
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:           out.ID,
		MobileNumber: out.Phone,
		Email:        out.Email,
		State:        out.State.String(),
		FirstName:    out.FirstName,
		MiddleName:   out.MiddleName,
		LastName:     out.LastName,
		City:         out.City,
		Pincode:      out.Pincode,
		UpdatedAt:    out.UpdatedAt,
	}, nil
}

func (h *HTTPEndpoint) tokenCookie(token jwt.Token) *http.Cookie {
	return &http.Cookie{
		Name:     router.CookieToken,
		Value:    token.Value,
		Path:     "/",
		Domain:   h.cfg.GetString("modules.seller.cookie.domain"),
		Expires:  token.ExpiresAt,
		MaxAge:   int(h.jwt.TTL().Seconds()),
		Secure:   h.cfg.GetBool("modules.seller.cookie.secure"),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
