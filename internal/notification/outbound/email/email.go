package email

import (
	"context"

	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/mail"
	"github.com/carventure/sellerhub/internal/shared/content"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

// SendOtp mails code to address using the shared OTP template.
func (m *Mail) SendOtp(ctx context.Context, address, code string) error {
	ctx, span := m.ins.Tracer("notification.outbound.email").Start(ctx, "SendOtp")
	defer span.End()

	msg, err := content.OtpEmail(address, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetAttributes(attribute.Int("recipients", len(msg.To)))

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
