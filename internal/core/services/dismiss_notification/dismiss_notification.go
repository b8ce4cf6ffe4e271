package dismissnotification

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
}

func (i Input) GetRateLimitKey() string {
	return fmt.Sprintf("dismiss_notification::%d", i.Owner)
}

type Result struct {
	Reminder     reminder.Reminder
	Notification notification.Notification
	// AlreadyDismissed is set when the call changed nothing.
	AlreadyDismissed bool
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

// Run marks the notification as dismissed. A one-off reminder becomes
// inactive, a recurring one moves to its next occurrence. Dismissing an
// already dismissed notification is a no-op.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	uow, err := s.unitOfWork.Begin(ctx)
	if err != nil {
		err = e.WrapGateway("begin transaction", err)
		logging.Error(ctx, s.log, err, logging.Entry("input", input))
		return result, err
	}
	defer uow.Rollback(ctx)

	notificationRepository := uow.Notifications()
	if err := notificationRepository.Lock(ctx, input.NotificationID); err != nil {
		err = e.WrapGateway("lock notification", err, notification.ErrNotificationDoesNotExist)
		return result, s.logError(ctx, err, input)
	}
	n, err := notificationRepository.GetByID(ctx, input.NotificationID)
	if err != nil {
		err = e.WrapGateway("get notification", err, notification.ErrNotificationDoesNotExist)
		return result, s.logError(ctx, err, input)
	}

	reminderRepository := uow.Reminders()
	if err := reminderRepository.Lock(ctx, n.ReminderID); err != nil {
		err = e.WrapGateway("lock reminder", err, reminder.ErrReminderDoesNotExist)
		return result, s.logError(ctx, err, input)
	}
	rem, err := reminderRepository.GetByID(ctx, n.ReminderID)
	if err != nil {
		err = e.WrapGateway("get reminder", err, reminder.ErrReminderDoesNotExist)
		return result, s.logError(ctx, err, input)
	}
	if rem.Owner != input.Owner {
		s.log.Info(ctx, "Notification belongs to another owner.", logging.Entry("input", input))
		return result, notification.ErrNotificationDoesNotExist
	}

	if n.IsDismissed() {
		s.log.Info(ctx, "Notification is already dismissed.", logging.Entry("input", input))
		return Result{Reminder: rem, Notification: n, AlreadyDismissed: true}, nil
	}

	now := s.now()
	n, err = notificationRepository.Update(
		ctx,
		notification.UpdateInput{
			ID:                  n.ID,
			DoDismissedAtUpdate: true,
			DismissedAt:         c.Some(now),
		},
	)
	if err != nil {
		return result, s.logError(ctx, e.WrapGateway("update notification", err), input)
	}

	if update, ok := reminderUpdate(rem, now); ok {
		rem, err = reminderRepository.Update(ctx, update)
		if err != nil {
			return result, s.logError(ctx, e.WrapGateway("update reminder", err), input)
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return result, s.logError(ctx, e.WrapGateway("commit", err), input)
	}

	s.log.Info(
		ctx,
		"Notification dismissed.",
		logging.Entry("notificationID", n.ID),
		logging.Entry("reminderID", rem.ID),
		logging.Entry("reminderActive", rem.Active),
		logging.Entry("reminderTriggerAt", rem.TriggerAt),
	)
	return Result{Reminder: rem, Notification: n}, nil
}

// reminderUpdate returns the change of the reminder caused by the dismissal.
// A recurring reminder already pointing to the future is left as is.
func reminderUpdate(rem reminder.Reminder, now time.Time) (reminder.UpdateInput, bool) {
	if !rem.Active {
		return reminder.UpdateInput{}, false
	}
	if !rem.IsRecurring() {
		return reminder.UpdateInput{ID: rem.ID, DoActiveUpdate: true, Active: false}, true
	}
	if rem.TriggerAt.After(now) {
		return reminder.UpdateInput{}, false
	}
	return reminder.UpdateInput{
		ID:                rem.ID,
		DoTriggerAtUpdate: true,
		TriggerAt:         rem.Every.Value.NextAfter(rem.TriggerAt, now),
	}, true
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
