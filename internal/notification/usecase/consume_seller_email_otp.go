package usecase

import (
	"context"
	"log/slog"

	"github.com/carventure/sellerhub/internal/pkg/idempotency"
)

const idempotencyPrefix = "notification:seller_email_otp:"

type ConsumeSellerEmailOtpInput struct {
	EventID  string `validate:"required"`
	SellerID int64  `validate:"gt=0"`
	Email    string `validate:"required,email"`
	Code     string `validate:"required,otpcode"`
}

// ConsumeSellerEmailOtp mails the code once per event. A malformed event is
// dropped; a mail failure is returned so the broker redelivers it.
func (s *Usecase) ConsumeSellerEmailOtp(ctx context.Context, in ConsumeSellerEmailOtpInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeSellerEmailOtp")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "event_id", in.EventID, "error", err)
		return nil
	}

	err := s.idempotency.Exec(ctx, idempotencyPrefix+in.EventID, func(ctx context.Context) error {
		return s.repoMail.SendOtp(ctx, in.Email, in.Code)
	}, idempotency.WithLockDuration(s.cfg.GetSecond("modules.notification.idempotency.lock_seconds")))
	if idempotency.Skipped(err) {
		slog.InfoContext(ctx, "seller email otp already handled", "event_id", in.EventID, "reason", err.Error())
		s.skipped.Inc(ctx, "reason", err.Error())
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to send seller email otp", "event_id", in.EventID, "seller_id", in.SellerID, "error", err)
		return err
	}

	s.delivered.Inc(ctx)
	return nil
}
