package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/carventure/sellerhub/internal/notification/usecase"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID, ok := messaging.HeaderValue(headers, keyOfCorrelationID); ok && cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

func (h *MQHandler) SellerEmailOtpNotification(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("notification.inbound.mq").Start(ctx, "SellerEmailOtpNotification")
	defer span.End()

	slog.InfoContext(ctx, "consume: seller email otp notification", "msg_id", msg.ID(), "topic", msg.Topic())

	body := msg.Body()
	var payload event.SellerEmailOtpMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of seller email otp notification", "msg_id", msg.ID(), "error", err)
		return nil
	}

	if err := h.uc.ConsumeSellerEmailOtp(ctx, usecase.ConsumeSellerEmailOtpInput{
		EventID:  payload.EventID,
		SellerID: payload.SellerID,
		Email:    payload.Email,
		Code:     payload.Code,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume seller email otp", "msg_id", msg.ID(), "event_id", payload.EventID, "error", err)
		return err
	}

	return nil
}
