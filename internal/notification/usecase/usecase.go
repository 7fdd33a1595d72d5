package usecase

import (
	"context"

	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/idempotency"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	SendOtp(ctx context.Context, address, code string) error
}

type Usecase struct {
	repoMail    repoMail
	idempotency idempotency.Idempotency
	cfg         config.Config
	validator   validator.Validator
	ins         instrument.Instrumentation

	delivered instrument.Counter
	skipped   instrument.Counter
}

type Dependency struct {
	RepoMail    repoMail
	Idempotency idempotency.Idempotency
	Config      config.Config
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("notification.usecase")

	return &Usecase{
		repoMail:    dep.RepoMail,
		idempotency: dep.Idempotency,
		cfg:         dep.Config,
		validator:   dep.Validator,
		ins:         dep.Instrument,
		delivered:   instrument.NewCounter(meter, "notification.email.delivered", "OTP emails handed to the mail server"),
		skipped:     instrument.NewCounter(meter, "notification.email.skipped", "Redelivered OTP events skipped"),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
