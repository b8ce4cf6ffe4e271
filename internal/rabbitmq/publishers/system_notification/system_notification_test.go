package systemnotification

import (
	"context"
	"errors"
	"reminderengine/internal/core/domain/delivery"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/rabbitmq/schema"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakePublisher struct {
	err   error
	calls []publishCall
}

func (p *fakePublisher) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp091.Publishing,
) error {
	p.calls = append(p.calls, publishCall{exchange: exchange, key: key, msg: msg})
	return p.err
}

func TestPublishesSystemNotification(t *testing.T) {
	// Setup ---
	publisher := &fakePublisher{}
	channel := NewRabbitMQ(logging.NewFakeLogger(), publisher, "reminders", "system_notification")
	triggerAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	d := delivery.Delivery{
		Reminder:     reminder.Reminder{ID: 5, Owner: 9, Message: "Call mom", TriggerAt: triggerAt},
		Notification: notification.Notification{ID: 11, ReminderID: 5, TriggerEpoch: notification.EpochOf(triggerAt)},
		At:           triggerAt.Add(time.Second),
	}

	// Exercise ---
	err := channel.Deliver(context.Background(), d)

	// Verify ---
	require.Nil(t, err)
	require.Len(t, publisher.calls, 1)
	call := publisher.calls[0]
	assert.Equal(t, "reminders", call.exchange)
	assert.Equal(t, "system_notification", call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	_, err = uuid.Parse(call.msg.MessageId)
	assert.Nil(t, err)

	msg := schema.SystemNotification{}
	require.Nil(t, msg.Unmarshal(call.msg.Body))
	assert.Equal(t, int64(11), msg.NotificationID)
	assert.Equal(t, int64(5), msg.ReminderID)
	assert.Equal(t, int64(9), msg.OwnerID)
	assert.Equal(t, "Call mom", msg.Body)
	assert.True(t, triggerAt.Equal(msg.TriggerAt))
}

func TestPublishFailureIsReturned(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("channel closed")}
	channel := NewRabbitMQ(logging.NewFakeLogger(), publisher, "reminders", "system_notification")

	err := channel.Deliver(context.Background(), delivery.Delivery{})

	assert.EqualError(t, err, "channel closed")
}

func TestRequiresSystemNotificationPermission(t *testing.T) {
	channel := NewRabbitMQ(logging.NewFakeLogger(), &fakePublisher{}, "reminders", "system_notification")
	assert.Equal(t, delivery.ChannelSystem, channel.Name())
	assert.Equal(t, permission.KindSystemNotification, channel.RequiredPermission().Value)
}
