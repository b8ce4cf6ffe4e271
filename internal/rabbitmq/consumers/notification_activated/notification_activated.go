package notificationactivated

import (
	"context"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/core/services"
	activatenotification "reminderengine/internal/core/services/activate_notification"
	"reminderengine/internal/rabbitmq/schema"

	"github.com/rabbitmq/amqp091-go"
)

type Source interface {
	Consume(ctx context.Context, queue string) <-chan amqp091.Delivery
}

// Consumer re-opens the in-app prompt when the user activates an OS-level
// notification. Activations of other owners are dropped.
type Consumer struct {
	log     logging.Logger
	source  Source
	queue   string
	owner   reminder.OwnerID
	service services.Service[activatenotification.Input, activatenotification.Result]
}

func New(
	log logging.Logger,
	source Source,
	queue string,
	owner reminder.OwnerID,
	service services.Service[activatenotification.Input, activatenotification.Result],
) *Consumer {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if source == nil {
		panic(e.NewNilArgumentError("source"))
	}
	if queue == "" {
		panic("queue name must not be empty")
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	return &Consumer{log: log, source: source, queue: queue, owner: owner, service: service}
}

// Consume handles messages until ctx is done. It returns a channel that is
// closed after the last message was handled.
func (c *Consumer) Consume(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	deliveries := c.source.Consume(ctx, c.queue)

	go func() {
		defer close(done)
		for delivery := range deliveries {
			c.handle(ctx, delivery.Body)
			if err := delivery.Ack(false); err != nil {
				c.log.Error(ctx, "Could not ACK AMQP message.", logging.Entry("err", err))
			}
		}
	}()
	return done
}

func (c *Consumer) handle(ctx context.Context, body []byte) {
	msg := &schema.NotificationActivated{}
	if err := msg.Unmarshal(body); err != nil {
		c.log.Error(
			ctx,
			"Could not unmarshal notification activation.",
			logging.Entry("err", err),
			logging.Entry("body", string(body)),
		)
		return
	}

	c.log.Info(ctx, "Got notification activation.", logging.Entry("notificationID", msg.NotificationID))
	if reminder.OwnerID(msg.OwnerID) != c.owner {
		c.log.Warning(
			ctx,
			"Notification activation of another owner dropped.",
			logging.Entry("notificationID", msg.NotificationID),
			logging.Entry("ownerID", msg.OwnerID),
		)
		return
	}
	_, err := c.service.Run(ctx, activatenotification.Input{
		Owner:          c.owner,
		NotificationID: notification.ID(msg.NotificationID),
	})
	if err != nil {
		c.log.Error(
			ctx,
			"Could not activate notification, service returned an error.",
			logging.Entry("notificationID", msg.NotificationID),
			logging.Entry("err", err),
		)
	}
}
