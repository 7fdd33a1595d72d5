package usecase

import (
	"context"
	"strings"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

type CompleteRegistrationInput struct {
	Phone      string `validate:"required,mobile"`
	FirstName  string `validate:"required,max=50,alpha"`
	MiddleName string `validate:"omitempty,max=50,alpha"`
	LastName   string `validate:"required,max=50,alpha"`
	City       string `validate:"required,max=100,cityname"`
	Pincode    string `validate:"required,pincode"`
}

// CompleteRegistration stores the profile of an email-verified seller and
// marks onboarding complete. Re-submitting overwrites the profile.
func (s *Usecase) CompleteRegistration(ctx context.Context, in CompleteRegistrationInput) error {
	ctx, span := s.startSpan(ctx, "CompleteRegistration")
	defer span.End()

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.MiddleName = strings.TrimSpace(in.MiddleName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.City = strings.TrimSpace(in.City)
	in.Pincode = strings.TrimSpace(in.Pincode)

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	seller, err := s.findByPhone(ctx, in.Phone)
	if err != nil {
		return err
	}

	next, err := seller.State.Advance(entity.StateRegistrationCompleted)
	if err != nil {
		return errStateTransition(err)
	}

	seller.FirstName = in.FirstName
	seller.MiddleName = in.MiddleName
	seller.LastName = in.LastName
	seller.City = in.City
	seller.Pincode = in.Pincode
	seller.State = next

	_, err = s.save(ctx, *seller)
	return err
}
