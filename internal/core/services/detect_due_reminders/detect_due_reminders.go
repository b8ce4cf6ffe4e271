package detectduereminders

import (
	"context"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/core/services"
	"time"
)

type Snapshotter interface {
	Snapshot() []reminder.Reminder
}

type Input struct{}

type Result struct {
	Outcome metrics.ScanOutcome
}

type service struct {
	log        logging.Logger
	cache      Snapshotter
	ledger     notification.Ledger
	dispatcher delivery.Dispatcher
	window     time.Duration
	now        func() time.Time
}

func New(
	log logging.Logger,
	cache Snapshotter,
	ledger notification.Ledger,
	dispatcher delivery.Dispatcher,
	window time.Duration,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if cache == nil {
		panic(e.NewNilArgumentError("cache"))
	}
	if ledger == nil {
		panic(e.NewNilArgumentError("ledger"))
	}
	if dispatcher == nil {
		panic(e.NewNilArgumentError("dispatcher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:        log,
		cache:      cache,
		ledger:     ledger,
		dispatcher: dispatcher,
		window:     window,
		now:        now,
	}
}

// Run scans the cached reminders once. A reminder is surfaced only if the
// ledger accepts a new notification for its current trigger time; failures
// are logged per reminder and never abort the scan.
func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	now := s.now()
	for _, rem := range s.cache.Snapshot() {
		if !rem.IsDueAt(now, s.window) {
			continue
		}
		result.Outcome.Due++

		epoch := notification.EpochOf(rem.TriggerAt)
		n, created, err := s.ledger.CreateIfAbsent(
			ctx,
			notification.CreateIfAbsentInput{
				ReminderID:   rem.ID,
				TriggerEpoch: epoch,
				CreatedAt:    now,
			},
		)
		if err != nil {
			result.Outcome.Failed++
			logging.Error(
				ctx,
				s.log,
				e.WrapGateway("create notification", err),
				logging.Entry("reminderID", rem.ID),
				logging.Entry("triggerEpoch", epoch),
			)
			continue
		}
		if !created {
			result.Outcome.Suppressed++
			s.log.Debug(
				ctx,
				notification.ErrDuplicateDeliverySuppressed.Error(),
				logging.Entry("reminderID", rem.ID),
				logging.Entry("notificationID", n.ID),
				logging.Entry("triggerEpoch", epoch),
			)
			continue
		}

		s.dispatcher.Dispatch(ctx, delivery.Delivery{Reminder: rem, Notification: n, At: now})
		result.Outcome.Delivered++
		s.log.Info(
			ctx,
			"Reminder is due, notification created.",
			logging.Entry("reminderID", rem.ID),
			logging.Entry("notificationID", n.ID),
			logging.Entry("triggerEpoch", epoch),
		)
	}
	return result, nil
}
