package snoozenotification

import (
	"context"
	"errors"
	"fmt"
	c "reminderengine/internal/core/domain/common"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	uow "reminderengine/internal/core/domain/unit_of_work"
	"reminderengine/internal/core/services"
	"time"
)

type Input struct {
	Owner          reminder.OwnerID
	NotificationID notification.ID
	Minutes        int
}

func (i Input) GetRateLimitKey() string {
	return fmt.Sprintf("snooze_notification::%d", i.Owner)
}

type Result struct {
	Reminder     reminder.Reminder
	Notification notification.Notification
}

type service struct {
	log        logging.Logger
	unitOfWork uow.UnitOfWork
	now        func() time.Time
}

func New(
	log logging.Logger,
	unitOfWork uow.UnitOfWork,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if unitOfWork == nil {
		panic(e.NewNilArgumentError("unitOfWork"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		unitOfWork: unitOfWork,
		now:        now,
	}
}

// Run moves the reminder's trigger time to now + Minutes and marks the
// notification as snoozed until then, both in one transaction. Nothing is
// written for a duration outside 1..MaxSnoozeMinutes.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if input.Minutes <= 0 || input.Minutes > notification.MaxSnoozeMinutes {
		s.log.Info(ctx, "Invalid snooze duration.", logging.Entry("input", input))
		return result, notification.ErrInvalidSnoozeDuration
	}

	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		err = e.WrapGateway("begin transaction", err)
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}
	defer uow.Rollback(ctx)

	notificationRepository := uow.Notifications()
	n, err := lockNotification(ctx, notificationRepository, input.NotificationID)
	if err != nil {
		return result, s.logError(ctx, err, input)
	}
	if n.IsDismissed() {
		s.log.Info(ctx, "Notification is dismissed and can't be snoozed.", logging.Entry("input", input))
		return result, notification.ErrNotificationDismissed
	}

	reminderRepository := uow.Reminders()
	if err := reminderRepository.Lock(ctx, n.ReminderID); err != nil {
		return result, s.logError(ctx, e.WrapGateway("lock reminder", err, reminder.ErrReminderDoesNotExist), input)
	}
	rem, err := reminderRepository.GetByID(ctx, n.ReminderID)
	if err != nil {
		return result, s.logError(ctx, e.WrapGateway("get reminder", err, reminder.ErrReminderDoesNotExist), input)
	}
	if rem.Owner != input.Owner {
		s.log.Info(ctx, "Notification belongs to another owner.", logging.Entry("input", input))
		return result, notification.ErrNotificationDoesNotExist
	}
	if !rem.Active {
		s.log.Info(ctx, "Reminder is not active and can't be snoozed.", logging.Entry("input", input))
		return result, reminder.ErrReminderIsNotActive
	}

	until := s.now().Add(time.Duration(input.Minutes) * time.Minute)
	rem, err = reminderRepository.Update(
		ctx,
		reminder.UpdateInput{
			ID:                rem.ID,
			DoTriggerAtUpdate: true,
			TriggerAt:         until,
		},
	)
	if err != nil {
		return result, s.logError(ctx, e.WrapGateway("update reminder", err), input)
	}
	n, err = notificationRepository.Update(
		ctx,
		notification.UpdateInput{
			ID:                   n.ID,
			DoSnoozedUntilUpdate: true,
			SnoozedUntil:         c.Some(until),
		},
	)
	if err != nil {
		return result, s.logError(ctx, e.WrapGateway("update notification", err), input)
	}

	if err := uow.Commit(ctx); err != nil {
		return result, s.logError(ctx, e.WrapGateway("commit", err), input)
	}

	s.log.Info(
		ctx,
		"Notification snoozed.",
		logging.Entry("notificationID", n.ID),
		logging.Entry("reminderID", rem.ID),
		logging.Entry("until", until),
	)
	return Result{Reminder: rem, Notification: n}, nil
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

func lockNotification(
	ctx context.Context,
	repo notification.Repository,
	id notification.ID,
) (n notification.Notification, err error) {
	if err := repo.Lock(ctx, id); err != nil {
		return n, e.WrapGateway("lock notification", err, notification.ErrNotificationDoesNotExist)
	}
	n, err = repo.GetByID(ctx, id)
	if err != nil {
		return n, e.WrapGateway("get notification", err, notification.ErrNotificationDoesNotExist)
	}
	return n, nil
}
