package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

type VerifyOtpInput struct {
	Channel entity.Channel `validate:"required,oneof=phone email"`
	// Identity is the phone number or email address the code was sent for.
	Identity   string `validate:"required,max=255"`
	Code       string `validate:"required,otpcode"`
	OwnerPhone string
}

// VerifyOtp checks code against the pending OTP and advances the seller's
// state. A wrong code changes nothing, so it may be retried until expiry.
func (s *Usecase) VerifyOtp(ctx context.Context, in VerifyOtpInput) error {
	ctx, span := s.startSpan(ctx, "VerifyOtp")
	defer span.End()

	in.Identity = strings.TrimSpace(in.Identity)
	in.Code = strings.TrimSpace(in.Code)
	if in.Channel == entity.ChannelEmail {
		in.Identity = strings.ToLower(in.Identity)
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if err := s.validateDestination(in.Channel, in.Identity); err != nil {
		return goerror.NewInvalidInput(err)
	}

	seller, err := s.sellerForVerify(ctx, in)
	if err != nil {
		return err
	}

	if !seller.OtpPending() {
		s.denied.Inc(ctx, "channel", string(in.Channel), "reason", "not_pending")
		return errOtpExpired()
	}

	if seller.OtpExpired(s.clock.Now()) {
		seller.ClearOtp()
		if _, err := s.repoDB.Save(ctx, *seller); err != nil {
			slog.WarnContext(ctx, "failed to clear expired otp", "seller_id", seller.ID, "error", err)
		}
		s.denied.Inc(ctx, "channel", string(in.Channel), "reason", "expired")
		return errOtpExpired()
	}

	if !s.hasher.Verify(seller.OtpHash, in.Code) {
		s.denied.Inc(ctx, "channel", string(in.Channel), "reason", "mismatch")
		return goerror.NewBusinessWrap(entity.ErrInvalidOtp, "Invalid OTP", goerror.CodeInvalidFormat)
	}

	next, err := seller.State.Advance(in.Channel.VerifiedState())
	if err != nil {
		slog.InfoContext(ctx, "otp verified out of order", "seller_id", seller.ID, "state", seller.State.String(), "channel", string(in.Channel))
		return errStateTransition(err)
	}

	seller.MarkVerified(next)
	if _, err := s.save(ctx, *seller); err != nil {
		return err
	}

	s.verified.Inc(ctx, "channel", string(in.Channel))
	return nil
}

func (s *Usecase) sellerForVerify(ctx context.Context, in VerifyOtpInput) (*entity.Seller, error) {
	if in.Channel == entity.ChannelPhone {
		return s.findByPhone(ctx, in.Identity)
	}

	owner := strings.TrimSpace(in.OwnerPhone)
	if owner == "" {
		return nil, errSellerNotFound()
	}

	if _, err := s.repoDB.FindByEmail(ctx, in.Identity); err != nil {
		if errors.Is(err, goerror.ErrNotFound) {
			return nil, errSellerNotFound()
		}
		slog.ErrorContext(ctx, "failed to repo find seller by email", "error", err)
		return nil, goerror.NewServer(err)
	}

	seller, err := s.findByPhone(ctx, owner)
	if err != nil {
		return nil, err
	}
	// the address must be the one this seller requested a code for
	if seller.Email != in.Identity {
		return nil, errSellerNotFound()
	}
	return seller, nil
}

func errOtpExpired() error {
	return goerror.NewBusinessWrap(entity.ErrOtpExpired, "OTP expired, please retry with a new one", goerror.CodeInvalidFormat)
}
