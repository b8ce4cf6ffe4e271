package dispatcher

import (
	"context"
	"errors"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/delivery"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const Owner = reminder.OwnerID(1)

type blockingChannel struct {
	started  chan struct{}
	finished chan error
}

func (ch *blockingChannel) Name() delivery.ChannelName {
	return delivery.ChannelAudio
}

func (ch *blockingChannel) RequiredPermission() c.Optional[permission.Kind] {
	return c.Optional[permission.Kind]{}
}

func (ch *blockingChannel) Deliver(ctx context.Context, d delivery.Delivery) error {
	close(ch.started)
	<-ctx.Done()
	ch.finished <- ctx.Err()
	return ctx.Err()
}

type panickingChannel struct{}

func (panickingChannel) Name() delivery.ChannelName { return "panicking" }

func (panickingChannel) RequiredPermission() c.Optional[permission.Kind] {
	return c.Optional[permission.Kind]{}
}

func (panickingChannel) Deliver(ctx context.Context, d delivery.Delivery) error {
	panic("boom")
}

type testSuite struct {
	suite.Suite
	logger      *logging.FakeLogger
	permissions *permission.FakeService
	bus         *delivery.Bus
	audio       *delivery.FakeChannel
	prompt      *delivery.FakeChannel
	system      *delivery.FakeChannel
	dispatcher  *Dispatcher
}

func (s *testSuite) SetupTest() {
	s.logger = logging.NewFakeLogger()
	s.permissions = permission.NewFakeService().GrantAll(Owner)
	s.bus = delivery.NewBus()
	s.audio = delivery.NewFakeChannel(delivery.ChannelAudio)
	s.audio.Permission = c.Some(permission.KindAudio)
	s.prompt = delivery.NewFakeChannel(delivery.ChannelPrompt)
	s.system = delivery.NewFakeChannel(delivery.ChannelSystem)
	s.system.Permission = c.Some(permission.KindSystemNotification)
	s.dispatcher = New(s.logger, s.permissions, metrics.Nop{}, s.bus, time.Second, s.audio, s.prompt, s.system)
}

func (s *testSuite) TearDownTest() {
	s.dispatcher.Close()
}

func TestDispatcher(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func newDelivery() delivery.Delivery {
	return delivery.Delivery{
		Reminder:     reminder.Reminder{ID: 10, Owner: Owner, Message: "stand up", Active: true},
		Notification: notification.Notification{ID: 20, ReminderID: 10},
	}
}

func (s *testSuite) TestDispatchToAllChannels() {
	// Setup ---
	events, unsubscribe := s.bus.Subscribe(1)
	defer unsubscribe()

	// Exercise ---
	s.dispatcher.Dispatch(context.Background(), newDelivery())
	s.dispatcher.Close()

	// Verify ---
	s.Len(s.audio.Deliveries(), 1)
	s.Len(s.prompt.Deliveries(), 1)
	s.Len(s.system.Deliveries(), 1)
	s.Require().Len(events, 1)
	s.Equal(notification.ID(20), (<-events).Notification.ID)
}

func (s *testSuite) TestFailingChannelDoesNotAffectOthers() {
	// Setup ---
	s.audio.DeliverErr = errors.New("no audio device")

	// Exercise ---
	s.dispatcher.Dispatch(context.Background(), newDelivery())
	s.dispatcher.Close()

	// Verify ---
	s.Empty(s.audio.Deliveries())
	s.Len(s.prompt.Deliveries(), 1)
	s.Len(s.system.Deliveries(), 1)
	s.Len(s.logger.Records(logging.ERROR), 1)
}

func (s *testSuite) TestPanickingChannelDoesNotAffectOthers() {
	// Setup ---
	dispatcher := New(s.logger, s.permissions, metrics.Nop{}, s.bus, 0, panickingChannel{}, s.prompt)

	// Exercise ---
	dispatcher.Dispatch(context.Background(), newDelivery())
	dispatcher.Close()

	// Verify ---
	s.Len(s.prompt.Deliveries(), 1)
	s.Len(s.logger.Records(logging.ERROR), 1)
}

func (s *testSuite) TestChannelWithoutPermissionIsSkipped() {
	cases := []struct {
		id    string
		state permission.State
	}{
		{id: "denied", state: permission.StateDenied},
		{id: "prompt", state: permission.StatePrompt},
	}
	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			// Setup ---
			s.SetupTest()
			ctx := context.Background()
			s.Require().Nil(s.permissions.Update(ctx, Owner, permission.KindSystemNotification, testcase.state))

			// Exercise ---
			s.dispatcher.Dispatch(ctx, newDelivery())
			s.dispatcher.Close()

			// Verify ---
			s.Empty(s.system.Deliveries())
			s.Len(s.audio.Deliveries(), 1)
			s.Len(s.prompt.Deliveries(), 1)
			s.Empty(s.logger.Records(logging.ERROR))
		})
	}
}

func (s *testSuite) TestPermissionQueryFailureSkipsChannel() {
	s.permissions.QueryError = errors.New("redis is down")

	s.dispatcher.Dispatch(context.Background(), newDelivery())
	s.dispatcher.Close()

	s.Empty(s.audio.Deliveries())
	s.Empty(s.system.Deliveries())
	s.Len(s.prompt.Deliveries(), 1)
}

func (s *testSuite) TestDisabledChannelIsSkipped() {
	// Setup ---
	s.Require().Nil(s.dispatcher.SetEnabled(delivery.ChannelAudio, false))

	// Exercise ---
	s.dispatcher.Dispatch(context.Background(), newDelivery())
	s.dispatcher.Close()

	// Verify ---
	s.False(s.dispatcher.IsEnabled(delivery.ChannelAudio))
	s.Empty(s.audio.Deliveries())
	s.Len(s.prompt.Deliveries(), 1)
}

func (s *testSuite) TestSetEnabledUnknownChannel() {
	err := s.dispatcher.SetEnabled("pager", true)

	s.ErrorIs(err, ErrUnknownChannel)
}

func (s *testSuite) TestCloseCancelsInFlightDelivery() {
	// Setup ---
	ch := &blockingChannel{started: make(chan struct{}), finished: make(chan error, 1)}
	dispatcher := New(s.logger, s.permissions, metrics.Nop{}, s.bus, 0, ch)
	dispatcher.Dispatch(context.Background(), newDelivery())
	<-ch.started

	// Exercise ---
	dispatcher.Close()

	// Verify ---
	s.ErrorIs(<-ch.finished, context.Canceled)
}

func (s *testSuite) TestDispatchAfterCloseIsDropped() {
	s.dispatcher.Close()

	s.dispatcher.Dispatch(context.Background(), newDelivery())

	s.Empty(s.prompt.Deliveries())
	s.Len(s.logger.Records(logging.WARNING), 1)
}
