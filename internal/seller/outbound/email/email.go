package email

import (
	"context"

	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/mail"
	"github.com/carventure/sellerhub/internal/seller/usecase"
	"github.com/carventure/sellerhub/internal/shared/content"
	"go.opentelemetry.io/otel/codes"
)

// Mail delivers email codes synchronously over the mail client.
type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) SendOtp(ctx context.Context, in usecase.OtpDelivery) error {
	ctx, span := m.ins.Tracer("seller.outbound.email").Start(ctx, "SendOtp")
	defer span.End()

	msg, err := content.OtpEmail(in.Destination, in.Code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
