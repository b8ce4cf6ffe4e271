package detectduereminders

import (
	"context"
	"errors"
	"reminderengine/internal/core/domain/delivery"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var Now = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

const Window = 10 * time.Second

type staticCache struct {
	reminders []reminder.Reminder
}

func (c *staticCache) Snapshot() []reminder.Reminder {
	return c.reminders
}

type testSuite struct {
	suite.Suite
	logger     *logging.FakeLogger
	cache      *staticCache
	ledger     *notification.FakeRepository
	dispatcher *delivery.FakeDispatcher
	now        time.Time
	service    services.Service[Input, Result]
}

func (s *testSuite) SetupTest() {
	s.logger = logging.NewFakeLogger()
	s.cache = &staticCache{}
	s.ledger = notification.NewFakeRepository()
	s.dispatcher = delivery.NewFakeDispatcher()
	s.now = Now
	s.service = New(s.logger, s.cache, s.ledger, s.dispatcher, Window, func() time.Time { return s.now })
}

func TestDetectDueRemindersService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestWindow() {
	cases := []struct {
		id        string
		triggerAt time.Time
		active    bool
		delivered int
	}{
		{id: "5 seconds ago", triggerAt: Now.Add(-5 * time.Second), active: true, delivered: 1},
		{id: "right now", triggerAt: Now, active: true, delivered: 1},
		{id: "window boundary", triggerAt: Now.Add(-Window), active: true, delivered: 1},
		{id: "15 seconds ago", triggerAt: Now.Add(-15 * time.Second), active: true, delivered: 0},
		{id: "yesterday", triggerAt: Now.Add(-24 * time.Hour), active: true, delivered: 0},
		{id: "in 5 seconds", triggerAt: Now.Add(5 * time.Second), active: true, delivered: 0},
		{id: "inactive", triggerAt: Now.Add(-5 * time.Second), active: false, delivered: 0},
	}
	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			// Setup ---
			s.SetupTest()
			s.cache.reminders = []reminder.Reminder{
				{ID: 1, Owner: 1, TriggerAt: testcase.triggerAt, Active: testcase.active},
			}

			// Exercise ---
			result, err := s.service.Run(context.Background(), Input{})

			// Verify ---
			s.Require().Nil(err)
			s.Equal(testcase.delivered, result.Outcome.Delivered)
			s.Len(s.dispatcher.Deliveries(), testcase.delivered)
			s.Len(s.ledger.ForReminder(1), testcase.delivered)
		})
	}
}

func (s *testSuite) TestAtMostOnceAcrossScans() {
	// Setup ---
	ctx := context.Background()
	s.cache.reminders = []reminder.Reminder{
		{ID: 1, Owner: 1, TriggerAt: Now.Add(-2 * time.Second), Active: true},
	}

	// Exercise ---
	first, err := s.service.Run(ctx, Input{})
	s.Require().Nil(err)
	s.now = Now.Add(5 * time.Second)
	second, err := s.service.Run(ctx, Input{})
	s.Require().Nil(err)

	// Verify ---
	s.Equal(1, first.Outcome.Delivered)
	s.Equal(0, second.Outcome.Delivered)
	s.Equal(1, second.Outcome.Suppressed)
	s.Len(s.dispatcher.Deliveries(), 1)
	s.Len(s.ledger.ForReminder(1), 1)
	s.Len(s.logger.Records(logging.DEBUG), 1)
	s.Equal(notification.ErrDuplicateDeliverySuppressed.Error(), s.logger.Records(logging.DEBUG)[0].Msg)
}

func (s *testSuite) TestDeliveryCarriesNotification() {
	// Setup ---
	triggerAt := Now.Add(-3 * time.Second)
	s.cache.reminders = []reminder.Reminder{
		{ID: 7, Owner: 1, Message: "water plants", TriggerAt: triggerAt, Active: true},
	}

	// Exercise ---
	_, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	s.Require().Nil(err)
	deliveries := s.dispatcher.Deliveries()
	s.Require().Len(deliveries, 1)
	s.Equal("water plants", deliveries[0].Reminder.Message)
	s.Equal(reminder.ID(7), deliveries[0].Notification.ReminderID)
	s.Equal(notification.EpochOf(triggerAt), deliveries[0].Notification.TriggerEpoch)
	s.Equal(Now, deliveries[0].Notification.CreatedAt)
	s.Equal(Now, deliveries[0].At)
}

func (s *testSuite) TestLedgerFailureDoesNotStopScan() {
	// Setup ---
	s.cache.reminders = []reminder.Reminder{
		{ID: 1, Owner: 1, TriggerAt: Now.Add(-1 * time.Second), Active: true},
		{ID: 2, Owner: 1, TriggerAt: Now.Add(-2 * time.Second), Active: true},
	}
	s.ledger.CreateError = errors.New("connection reset")

	// Exercise ---
	result, err := s.service.Run(context.Background(), Input{})

	// Verify ---
	s.Require().Nil(err)
	s.Equal(2, result.Outcome.Due)
	s.Equal(2, result.Outcome.Failed)
	s.Equal(2, s.ledger.CreateCalls)
	s.Empty(s.dispatcher.Deliveries())
	errorRecords := s.logger.Records(logging.ERROR)
	s.Require().Len(errorRecords, 2)
	s.Contains(errorRecords[0].Msg, "gateway create notification")
}

func (s *testSuite) TestSnoozedReminderIsDeliveredAgain() {
	// Setup ---
	ctx := context.Background()
	s.cache.reminders = []reminder.Reminder{{ID: 1, Owner: 1, TriggerAt: Now, Active: true}}
	_, err := s.service.Run(ctx, Input{})
	s.Require().Nil(err)

	// Exercise ---
	snoozedTo := Now.Add(10 * time.Minute)
	s.cache.reminders = []reminder.Reminder{{ID: 1, Owner: 1, TriggerAt: snoozedTo, Active: true}}
	s.now = snoozedTo.Add(-time.Second)
	before, err := s.service.Run(ctx, Input{})
	s.Require().Nil(err)
	s.now = snoozedTo.Add(time.Second)
	after, err := s.service.Run(ctx, Input{})
	s.Require().Nil(err)

	// Verify ---
	s.Equal(0, before.Outcome.Delivered)
	s.Equal(1, after.Outcome.Delivered)
	notifications := s.ledger.ForReminder(1)
	s.Require().Len(notifications, 2)
	s.Equal(notification.EpochOf(snoozedTo), notifications[1].TriggerEpoch)
}
