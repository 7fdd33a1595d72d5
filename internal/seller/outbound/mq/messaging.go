package mq

import (
	"context"
	"encoding/json"

	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/seller/usecase"
	"github.com/carventure/sellerhub/internal/shared/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

// Messaging hands email codes to the notification worker through the broker.
type Messaging struct {
	client messaging.Publisher
	uuid   uid.StringID
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, uuid uid.StringID, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, uuid: uuid, ins: ins}
}

func (m *Messaging) SendOtp(ctx context.Context, in usecase.OtpDelivery) error {
	ctx, span := m.ins.Tracer("seller.outbound.mq").Start(ctx, "SendOtp")
	defer span.End()

	eventID := m.uuid.Generate()
	span.SetAttributes(attribute.String("event_id", eventID))

	body, err := json.Marshal(event.SellerEmailOtpMessage{
		EventID:  eventID,
		SellerID: in.SellerID,
		Email:    in.Destination,
		Code:     in.Code,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.SellerEmailOtpDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(in.Destination),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
