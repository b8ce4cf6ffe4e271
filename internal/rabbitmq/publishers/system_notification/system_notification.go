package systemnotification

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/rabbitmq/schema"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

const Title = "Reminder"

type Publisher interface {
	PublishWithContext(
		ctx context.Context,
		exchange, key string,
		mandatory, immediate bool,
		msg amqp091.Publishing,
	) error
}

// RabbitMQ hands OS-level notifications over to the platform notification
// agent listening on the routing key.
type RabbitMQ struct {
	log        logging.Logger
	channel    Publisher
	exchange   string
	routingKey string
}

func NewRabbitMQ(log logging.Logger, channel Publisher, exchange string, routingKey string) *RabbitMQ {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if channel == nil {
		panic(e.NewNilArgumentError("channel"))
	}
	return &RabbitMQ{log: log, channel: channel, exchange: exchange, routingKey: routingKey}
}

func (s *RabbitMQ) Name() delivery.ChannelName {
	return delivery.ChannelSystem
}

func (s *RabbitMQ) RequiredPermission() c.Optional[permission.Kind] {
	return c.Some(permission.KindSystemNotification)
}

func (s *RabbitMQ) Deliver(ctx context.Context, d delivery.Delivery) error {
	msg := schema.SystemNotification{
		NotificationID: int64(d.Notification.ID),
		ReminderID:     int64(d.Reminder.ID),
		OwnerID:        int64(d.Reminder.Owner),
		Title:          Title,
		Body:           d.Reminder.Message,
		TriggerAt:      d.Notification.TriggerEpoch.Time(),
	}
	body, err := msg.Marshal()
	if err != nil {
		return err
	}

	messageID := uuid.NewString()
	err = s.channel.PublishWithContext(ctx, s.exchange, s.routingKey, false, false, amqp091.Publishing{
		MessageId:    messageID,
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    d.At,
		Body:         body,
	})
	if err != nil {
		return err
	}
	s.log.Debug(
		ctx,
		"AMQP message has been successfully published.",
		logging.Entry("exchange", s.exchange),
		logging.Entry("RK", s.routingKey),
		logging.Entry("messageID", messageID),
		logging.Entry("notificationID", d.Notification.ID),
	)
	return nil
}
