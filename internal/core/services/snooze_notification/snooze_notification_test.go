package snoozenotification

import (
	"context"
	"errors"
	c "reminderengine/internal/core/domain/common"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	uow "reminderengine/internal/core/domain/unit_of_work"
	"reminderengine/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var Now = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	Owner          = reminder.OwnerID(1)
	ReminderID     = reminder.ID(10)
	NotificationID = notification.ID(20)
)

type testSuite struct {
	suite.Suite
	logger        *logging.FakeLogger
	reminders     *reminder.FakeRepository
	notifications *notification.FakeRepository
	unitOfWork    *uow.FakeUnitOfWork
	service       services.Service[Input, Result]
}

func (s *testSuite) SetupTest() {
	s.logger = logging.NewFakeLogger()
	s.reminders = reminder.NewFakeRepository(
		reminder.Reminder{ID: ReminderID, Owner: Owner, Message: "call mom", TriggerAt: Now, Active: true},
	)
	s.notifications = notification.NewFakeRepository()
	s.notifications.Put(notification.Notification{
		ID:           NotificationID,
		ReminderID:   ReminderID,
		TriggerEpoch: notification.EpochOf(Now),
		CreatedAt:    Now,
	})
	s.unitOfWork = uow.NewFakeUnitOfWork(s.reminders, s.notifications)
	s.service = New(s.logger, s.unitOfWork, func() time.Time { return Now })
}

func TestSnoozeNotificationService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestSuccess() {
	// Exercise ---
	result, err := s.service.Run(
		context.Background(),
		Input{Owner: Owner, NotificationID: NotificationID, Minutes: 10},
	)

	// Verify ---
	s.Require().Nil(err)
	expected := Now.Add(10 * time.Minute)
	s.Equal(expected, result.Reminder.TriggerAt)
	s.True(result.Reminder.Active)
	s.Equal(c.Some(expected), result.Notification.SnoozedUntil)
	s.False(result.Notification.IsDismissed())

	rem, _ := s.reminders.Get(ReminderID)
	s.Equal(expected, rem.TriggerAt)
	s.True(s.unitOfWork.Context.WasCommitCalled)
}

func (s *testSuite) TestInvalidDurationWritesNothing() {
	cases := []int{0, -5, notification.MaxSnoozeMinutes + 1, 200_000_000}
	for _, minutes := range cases {
		s.Run("", func() {
			// Setup ---
			s.SetupTest()

			// Exercise ---
			_, err := s.service.Run(
				context.Background(),
				Input{Owner: Owner, NotificationID: NotificationID, Minutes: minutes},
			)

			// Verify ---
			s.ErrorIs(err, notification.ErrInvalidSnoozeDuration)
			s.Empty(s.reminders.Updated)
			s.Empty(s.notifications.Updated)
			s.False(s.unitOfWork.Context.WasCommitCalled)
			rem, _ := s.reminders.Get(ReminderID)
			s.Equal(Now, rem.TriggerAt)
		})
	}
}

func (s *testSuite) TestDismissedNotification() {
	// Setup ---
	n, err := s.notifications.GetByID(context.Background(), NotificationID)
	s.Require().Nil(err)
	n.DismissedAt = c.Some(Now)
	s.notifications.Put(n)

	// Exercise ---
	_, err = s.service.Run(
		context.Background(),
		Input{Owner: Owner, NotificationID: NotificationID, Minutes: 5},
	)

	// Verify ---
	s.ErrorIs(err, notification.ErrNotificationDismissed)
	s.Empty(s.reminders.Updated)
	s.False(s.unitOfWork.Context.WasCommitCalled)
}

func (s *testSuite) TestNotFound() {
	cases := []struct {
		id    string
		input Input
	}{
		{id: "unknown notification", input: Input{Owner: Owner, NotificationID: 999, Minutes: 5}},
		{id: "another owner", input: Input{Owner: 2, NotificationID: NotificationID, Minutes: 5}},
	}
	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			s.SetupTest()

			_, err := s.service.Run(context.Background(), testcase.input)

			s.ErrorIs(err, notification.ErrNotificationDoesNotExist)
			s.Empty(s.reminders.Updated)
			s.Empty(s.logger.Records(logging.ERROR))
		})
	}
}

func (s *testSuite) TestInactiveReminder() {
	s.reminders.Put(reminder.Reminder{ID: ReminderID, Owner: Owner, TriggerAt: Now, Active: false})

	_, err := s.service.Run(
		context.Background(),
		Input{Owner: Owner, NotificationID: NotificationID, Minutes: 5},
	)

	s.ErrorIs(err, reminder.ErrReminderIsNotActive)
}

func (s *testSuite) TestWriteFailure() {
	// Setup ---
	s.reminders.UpdateError = errors.New("connection reset")

	// Exercise ---
	_, err := s.service.Run(
		context.Background(),
		Input{Owner: Owner, NotificationID: NotificationID, Minutes: 5},
	)

	// Verify ---
	s.True(e.IsGatewayError(err))
	s.ErrorIs(err, s.reminders.UpdateError)
	s.False(s.unitOfWork.Context.WasCommitCalled)
	s.True(s.unitOfWork.Context.WasRollbackCalled)
	s.Empty(s.notifications.Updated)
	s.Len(s.logger.Records(logging.ERROR), 1)
}

func (s *testSuite) TestBeginFailure() {
	s.unitOfWork.BeginError = errors.New("too many connections")

	_, err := s.service.Run(
		context.Background(),
		Input{Owner: Owner, NotificationID: NotificationID, Minutes: 5},
	)

	s.True(e.IsGatewayError(err))
}

func (s *testSuite) TestRateLimitKey() {
	s.Equal("snooze_notification::1", Input{Owner: Owner}.GetRateLimitKey())
}
