package inbound

import (
	"context"

	"github.com/carventure/sellerhub/internal/notification/usecase"
)

type uc interface {
	ConsumeSellerEmailOtp(ctx context.Context, in usecase.ConsumeSellerEmailOtpInput) error
}
