package usecase

import (
	"context"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

type (
	ProfileInput struct {
		Phone string `validate:"required,mobile"`
	}

	ProfileOutput struct {
		ID         int64
		Phone      string
		Email      string
		State      entity.State
		FirstName  string
		MiddleName string
		LastName   string
		City       string
		Pincode    string
		UpdatedAt  time.Time
	}
)

// Profile returns the onboarding progress of the authenticated seller with
// the email masked.
func (s *Usecase) Profile(ctx context.Context, in ProfileInput) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	seller, err := s.findByPhone(ctx, in.Phone)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{
		ID:         seller.ID,
		Phone:      seller.Phone,
		Email:      entity.MaskEmail(seller.Email),
		State:      seller.State,
		FirstName:  seller.FirstName,
		MiddleName: seller.MiddleName,
		LastName:   seller.LastName,
		City:       seller.City,
		Pincode:    seller.Pincode,
		UpdatedAt:  seller.UpdatedAt,
	}, nil
}
