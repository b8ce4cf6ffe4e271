package activatenotification

import (
	"context"
	"errors"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/core/services"
	"time"
)

type Input struct {
	Owner          reminder.OwnerID
	NotificationID notification.ID
}

type Result struct {
	Delivery delivery.Delivery
}

type service struct {
	log           logging.Logger
	reminders     reminder.Repository
	notifications notification.Repository
	prompt        delivery.Channel
	now           func() time.Time
}

func New(
	log logging.Logger,
	reminders reminder.Repository,
	notifications notification.Repository,
	prompt delivery.Channel,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if reminders == nil {
		panic(e.NewNilArgumentError("reminders"))
	}
	if notifications == nil {
		panic(e.NewNilArgumentError("notifications"))
	}
	if prompt == nil {
		panic(e.NewNilArgumentError("prompt"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:           log,
		reminders:     reminders,
		notifications: notifications,
		prompt:        prompt,
		now:           now,
	}
}

// Run opens the interactive prompt again for a notification the user
// activated from the OS notification center.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	n, err := s.notifications.GetByID(ctx, input.NotificationID)
	if err != nil {
		err = e.WrapGateway("get notification", err, notification.ErrNotificationDoesNotExist)
		return result, s.logError(ctx, err, input)
	}
	rem, err := s.reminders.GetByID(ctx, n.ReminderID)
	if err != nil {
		err = e.WrapGateway("get reminder", err, reminder.ErrReminderDoesNotExist)
		return result, s.logError(ctx, err, input)
	}
	if rem.Owner != input.Owner {
		s.log.Info(ctx, "Notification belongs to another owner.", logging.Entry("input", input))
		return result, notification.ErrNotificationDoesNotExist
	}
	if n.IsDismissed() {
		s.log.Info(ctx, "Dismissed notification can't be activated.", logging.Entry("input", input))
		return result, notification.ErrNotificationDismissed
	}

	d := delivery.Delivery{Reminder: rem, Notification: n, At: s.now()}
	if err := s.prompt.Deliver(ctx, d); err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}
	s.log.Info(ctx, "Prompt re-opened.", logging.Entry("notificationID", n.ID))
	return Result{Delivery: d}, nil
}

func (s *service) logError(ctx context.Context, err error, input Input) error {
	if errors.Is(err, notification.ErrNotificationDoesNotExist) ||
		errors.Is(err, reminder.ErrReminderDoesNotExist) {
		s.log.Info(ctx, err.Error(), logging.Entry("input", input))
		return err
	}
	logging.Error(ctx, s.log, err, logging.Entry("input", input))
	return err
}
