package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/idempotency"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/validator"
)

type sentMail struct {
	address, code string
}

type fakeMail struct {
	sent []sentMail
	err  error
}

func (f *fakeMail) SendOtp(_ context.Context, address, code string) error {
	f.sent = append(f.sent, sentMail{address: address, code: code})
	return f.err
}

// memIdempotency mirrors the Redis tracker: success is remembered, failure
// releases the key.
type memIdempotency struct {
	done map[string]bool
	keys []string
}

func (m *memIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	m.keys = append(m.keys, key)
	if m.done[key] {
		return idempotency.ErrAlreadyCompleted
	}
	if err := fn(ctx); err != nil {
		return err
	}
	m.done[key] = true
	return nil
}

func newUsecase(t *testing.T, mail *fakeMail) (*Usecase, *memIdempotency) {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  notification:\n    idempotency:\n      lock_seconds: 30\n"))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	idem := &memIdempotency{done: map[string]bool{}}
	return NewNotification(Dependency{
		RepoMail:    mail,
		Idempotency: idem,
		Config:      cfg,
		Validator:   v,
		Instrument:  instrument.NewNoop(),
	}), idem
}

func validInput() ConsumeSellerEmailOtpInput {
	return ConsumeSellerEmailOtpInput{EventID: "evt-1", SellerID: 101, Email: "seller@example.com", Code: "123456"}
}

func TestUsecase_ConsumeSellerEmailOtp(t *testing.T) {
	t.Parallel()

	// Arrange
	mail := &fakeMail{}
	uc, idem := newUsecase(t, mail)
	ctx := context.Background()

	// Act
	first := uc.ConsumeSellerEmailOtp(ctx, validInput())
	redelivered := uc.ConsumeSellerEmailOtp(ctx, validInput())

	// Assert
	if first != nil || redelivered != nil {
		t.Fatalf("errors = %v, %v", first, redelivered)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(mail.sent))
	}
	if mail.sent[0] != (sentMail{address: "seller@example.com", code: "123456"}) {
		t.Fatalf("sent = %+v", mail.sent[0])
	}
	if idem.keys[0] != "notification:seller_email_otp:evt-1" {
		t.Fatalf("idempotency key = %q", idem.keys[0])
	}
}

func TestUsecase_ConsumeSellerEmailOtp_FailureIsRetried(t *testing.T) {
	t.Parallel()

	errSMTP := errors.New("smtp down")
	mail := &fakeMail{err: errSMTP}
	uc, _ := newUsecase(t, mail)
	ctx := context.Background()

	if err := uc.ConsumeSellerEmailOtp(ctx, validInput()); !errors.Is(err, errSMTP) {
		t.Fatalf("error = %v, want %v", err, errSMTP)
	}

	mail.err = nil
	if err := uc.ConsumeSellerEmailOtp(ctx, validInput()); err != nil {
		t.Fatalf("redelivery error = %v", err)
	}
	if len(mail.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(mail.sent))
	}
}

func TestUsecase_ConsumeSellerEmailOtp_DropsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ConsumeSellerEmailOtpInput)
	}{
		{name: "missing event id", mutate: func(in *ConsumeSellerEmailOtpInput) { in.EventID = "" }},
		{name: "bad email", mutate: func(in *ConsumeSellerEmailOtpInput) { in.Email = "nope" }},
		{name: "short code", mutate: func(in *ConsumeSellerEmailOtpInput) { in.Code = "123" }},
		{name: "no seller", mutate: func(in *ConsumeSellerEmailOtpInput) { in.SellerID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mail := &fakeMail{}
			uc, _ := newUsecase(t, mail)

			in := validInput()
			tt.mutate(&in)

			if err := uc.ConsumeSellerEmailOtp(context.Background(), in); err != nil {
				t.Fatalf("error = %v, want nil", err)
			}
			if len(mail.sent) != 0 {
				t.Fatal("invalid event was mailed")
			}
		})
	}
}
