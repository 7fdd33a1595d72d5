package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

type RequestOtpInput struct {
	Channel entity.Channel `validate:"required,oneof=phone email"`
	// Destination is the phone number or the email address to verify.
	Destination string `validate:"required,max=255"`
	// OwnerPhone is the authenticated phone; required for the email channel.
	OwnerPhone string
}

// RequestOtp issues a new code on the channel when the retry policy allows
// it. A phone request creates the seller on first touch; an email request
// binds the address to the seller owning OwnerPhone. The code is never
// returned.
func (s *Usecase) RequestOtp(ctx context.Context, in RequestOtpInput) error {
	ctx, span := s.startSpan(ctx, "RequestOtp")
	defer span.End()

	in.Destination = strings.TrimSpace(in.Destination)
	if in.Channel == entity.ChannelEmail {
		in.Destination = strings.ToLower(in.Destination)
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}
	if err := s.validateDestination(in.Channel, in.Destination); err != nil {
		return goerror.NewInvalidInput(err)
	}

	seller, err := s.sellerForRequest(ctx, in)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	decision := s.policy().Evaluate(seller.OtpRetryCount, seller.OtpCooldownUntil, now)
	if !decision.Allowed() {
		s.denied.Inc(ctx, "channel", string(in.Channel), "reason", "cooldown")
		slog.InfoContext(ctx, "otp request refused during cooldown", "seller_id", seller.ID, "cooldown_until", seller.OtpCooldownUntil)
		return goerror.NewBusinessWrap(entity.ErrCooldownActive, "Seller is still in the cooldown period. Please try again later", goerror.CodeForbidden)
	}

	code, err := s.codec.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp", "error", err)
		return goerror.NewServer(err)
	}

	digest, err := s.hasher.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp", "error", err)
		return goerror.NewServer(err)
	}

	seller.ApplyOtp(string(digest), now.Add(s.otpExpiry()), decision)
	saved, err := s.save(ctx, *seller)
	if err != nil {
		return err
	}
	s.issued.Inc(ctx, "channel", string(in.Channel), "outcome", decision.Outcome.String())

	if in.Channel != entity.ChannelEmail {
		// no SMS gateway is wired; the phone code is only stored
		slog.InfoContext(ctx, "phone otp issued without delivery", "seller_id", saved.ID)
		return nil
	}

	if err := s.repoDelivery.SendOtp(ctx, OtpDelivery{
		SellerID:    saved.ID,
		Channel:     in.Channel,
		Destination: in.Destination,
		Code:        code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "seller_id", saved.ID, "error", err)
		return goerror.NewBusinessWrap(errors.Join(entity.ErrDeliveryFailure, err), "Failed to send OTP, please try again", goerror.CodeUnavailable)
	}

	return nil
}

type (
	phoneDestination struct {
		MobileNumber string `validate:"required,mobile"`
	}
	emailDestination struct {
		Email string `validate:"required,email,max=255"`
	}
)

// validateDestination applies the format rule of the channel.
func (s *Usecase) validateDestination(ch entity.Channel, dest string) error {
	if ch == entity.ChannelEmail {
		return s.validator.Validate(emailDestination{Email: dest})
	}
	return s.validator.Validate(phoneDestination{MobileNumber: dest})
}

func (s *Usecase) sellerForRequest(ctx context.Context, in RequestOtpInput) (*entity.Seller, error) {
	if in.Channel == entity.ChannelPhone {
		seller, err := s.repoDB.FindByPhone(ctx, in.Destination)
		if errors.Is(err, goerror.ErrNotFound) {
			fresh := entity.NewSeller(s.uid.Generate(), in.Destination)
			return &fresh, nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo find seller by phone", "phone", in.Destination, "error", err)
			return nil, goerror.NewServer(err)
		}
		return seller, nil
	}

	owner := strings.TrimSpace(in.OwnerPhone)
	if owner == "" {
		return nil, errSellerNotFound()
	}

	seller, err := s.findByPhone(ctx, owner)
	if err != nil {
		return nil, err
	}
	seller.Email = in.Destination
	return seller, nil
}
