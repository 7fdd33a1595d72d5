package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

func onboardToEmailVerified(t *testing.T, f *fixture, phone, email string) {
	t.Helper()

	f.requestPhone(t, phone)
	f.verifyPhone(t, phone, "123456")

	ctx := context.Background()
	if err := f.uc.RequestOtp(ctx, RequestOtpInput{Channel: entity.ChannelEmail, Destination: email, OwnerPhone: phone}); err != nil {
		t.Fatalf("RequestOtp(email) error = %v", err)
	}
	if err := f.uc.VerifyOtp(ctx, VerifyOtpInput{Channel: entity.ChannelEmail, Identity: email, Code: "123456", OwnerPhone: phone}); err != nil {
		t.Fatalf("VerifyOtp(email) error = %v", err)
	}
}

func validRegistration(phone string) CompleteRegistrationInput {
	return CompleteRegistrationInput{
		Phone:     phone,
		FirstName: "Asha",
		LastName:  "Verma",
		City:      "New Delhi",
		Pincode:   "110001",
	}
}

func TestUsecase_CompleteRegistration(t *testing.T) {
	t.Parallel()

	// Arrange
	f := newFixture(t)
	onboardToEmailVerified(t, f, "9999999999", "asha@example.com")

	// Act
	err := f.uc.CompleteRegistration(context.Background(), validRegistration("9999999999"))

	// Assert
	if err != nil {
		t.Fatalf("CompleteRegistration() error = %v", err)
	}
	got := f.store.get(t, "9999999999")
	if got.State != entity.StateRegistrationCompleted || got.FirstName != "Asha" || got.City != "New Delhi" || got.Pincode != "110001" {
		t.Fatalf("unexpected seller %+v", got)
	}

	// resubmission overwrites
	again := validRegistration("9999999999")
	again.MiddleName = "Kumari"
	again.City = "Pune"
	if err := f.uc.CompleteRegistration(context.Background(), again); err != nil {
		t.Fatalf("second CompleteRegistration() error = %v", err)
	}
	got = f.store.get(t, "9999999999")
	if got.City != "Pune" || got.MiddleName != "Kumari" || got.State != entity.StateRegistrationCompleted {
		t.Fatalf("profile not overwritten: %+v", got)
	}
}

func TestUsecase_CompleteRegistration_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		arrange  func(t *testing.T, f *fixture)
		in       CompleteRegistrationInput
		wantIs   error
		wantCode goerror.Code
	}{
		{
			name:     "unknown seller",
			in:       validRegistration("8888888888"),
			wantIs:   entity.ErrSellerNotFound,
			wantCode: goerror.CodeNotFound,
		},
		{
			name: "only phone verified",
			arrange: func(t *testing.T, f *fixture) {
				f.requestPhone(t, "9999999999")
				f.verifyPhone(t, "9999999999", "123456")
			},
			in:       validRegistration("9999999999"),
			wantIs:   entity.ErrStateTransition,
			wantCode: goerror.CodeForbidden,
		},
		{
			name: "unverified",
			arrange: func(t *testing.T, f *fixture) {
				f.requestPhone(t, "9999999999")
			},
			in:       validRegistration("9999999999"),
			wantIs:   entity.ErrStateTransition,
			wantCode: goerror.CodeForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			if tt.arrange != nil {
				tt.arrange(t, f)
			}

			err := f.uc.CompleteRegistration(context.Background(), tt.in)

			assertBusiness(t, err, tt.wantIs, tt.wantCode)
		})
	}
}

func TestUsecase_CompleteRegistration_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	onboardToEmailVerified(t, f, "9999999999", "asha@example.com")

	mutations := map[string]func(in *CompleteRegistrationInput){
		"digits in first name": func(in *CompleteRegistrationInput) { in.FirstName = "Asha1" },
		"missing last name":    func(in *CompleteRegistrationInput) { in.LastName = "" },
		"bad middle name":      func(in *CompleteRegistrationInput) { in.MiddleName = "K." },
		"city with digits":     func(in *CompleteRegistrationInput) { in.City = "Sector 9" },
		"short pincode":        func(in *CompleteRegistrationInput) { in.Pincode = "1100" },
	}

	for name, mutate := range mutations {
		in := validRegistration("9999999999")
		mutate(&in)

		err := f.uc.CompleteRegistration(context.Background(), in)

		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("%s: error = %v, want invalid input", name, err)
		}
	}
	if got := f.store.get(t, "9999999999"); got.State != entity.StateEmailVerified {
		t.Fatalf("invalid input changed state to %s", got.State)
	}
}

func TestUsecase_Profile(t *testing.T) {
	t.Parallel()

	// Arrange
	f := newFixture(t)
	onboardToEmailVerified(t, f, "9999999999", "asha@example.com")

	// Act
	out, err := f.uc.Profile(context.Background(), ProfileInput{Phone: "9999999999"})

	// Assert
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if out.Email != "a***@example.com" || out.State != entity.StateEmailVerified || out.Phone != "9999999999" {
		t.Fatalf("unexpected profile %+v", out)
	}

	_, err = f.uc.Profile(context.Background(), ProfileInput{Phone: "8888888888"})
	assertBusiness(t, err, entity.ErrSellerNotFound, goerror.CodeNotFound)
}
