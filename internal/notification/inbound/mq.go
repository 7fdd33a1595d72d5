package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goroutine"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.SellerEmailOtpConsumerNotification,
			topic:             event.SellerEmailOtpDestination,
			natsConsumerName:  event.SellerEmailOtpConsumerNotification,
			kafkaConsumerName: event.SellerEmailOtpConsumerNotification,
			handler:           mqHandler.SellerEmailOtpNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				err := messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(cfg.GetInt("modules.notification.concurrency")),
					messaging.WithMaxInFlight(cfg.GetInt("modules.notification.max_in_flight")),
				)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		}
	}
}
