package notification

import (
	"context"

	"github.com/carventure/sellerhub/internal/notification/inbound"
	"github.com/carventure/sellerhub/internal/notification/outbound/email"
	"github.com/carventure/sellerhub/internal/notification/usecase"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goroutine"
	"github.com/carventure/sellerhub/internal/pkg/idempotency"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/mail"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoMail := email.New(dep.Mail, dep.Instrument)

	uc := usecase.NewNotification(usecase.Dependency{
		RepoMail:    repoMail,
		Idempotency: dep.Idempotency,
		Config:      dep.Config,
		Validator:   dep.Validator,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
