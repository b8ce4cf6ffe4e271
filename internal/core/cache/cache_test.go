package cache

import (
	"context"
	"errors"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/reminder"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var Now = time.Date(2023, 3, 1, 12, 0, 0, 0, time.UTC)

const Owner = reminder.OwnerID(1)

type testSuite struct {
	suite.Suite
	logger *logging.FakeLogger
	repo   *reminder.FakeRepository
	feed   *reminder.FakeChangeFeed
	cache  *Cache
}

func (s *testSuite) SetupTest() {
	s.logger = logging.NewFakeLogger()
	s.repo = reminder.NewFakeRepository(
		reminder.Reminder{ID: 1, Owner: Owner, TriggerAt: Now, Active: true},
		reminder.Reminder{ID: 2, Owner: Owner, TriggerAt: Now, Active: false},
		reminder.Reminder{ID: 3, Owner: reminder.OwnerID(2), TriggerAt: Now, Active: true},
	)
	s.feed = reminder.NewFakeChangeFeed()
	s.cache = New(Owner, s.repo, s.logger, metrics.Nop{}, 0)
}

func TestCache(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestSnapshotIsEmptyBeforeLoad() {
	s.Empty(s.cache.Snapshot())
	s.False(s.cache.IsLoaded())
}

func (s *testSuite) TestLoadReplacesSnapshot() {
	// Exercise ---
	err := s.cache.Load(context.Background())

	// Verify ---
	s.Require().Nil(err)
	s.True(s.cache.IsLoaded())
	snapshot := s.cache.Snapshot()
	s.Require().Len(snapshot, 1)
	s.Equal(reminder.ID(1), snapshot[0].ID)
}

func (s *testSuite) TestLoadFailureKeepsLastKnownGoodSnapshot() {
	// Setup ---
	ctx := context.Background()
	s.Require().Nil(s.cache.Load(ctx))
	s.repo.ListActiveError = errors.New("connection refused")

	// Exercise ---
	err := s.cache.Load(ctx)

	// Verify ---
	s.True(e.IsGatewayError(err))
	s.ErrorIs(err, s.repo.ListActiveError)
	s.Len(s.cache.Snapshot(), 1)
}

func (s *testSuite) TestApplyChangeEvent() {
	// Setup ---
	ctx := context.Background()
	s.Require().Nil(s.cache.Load(ctx))
	s.repo.Put(reminder.Reminder{ID: 4, Owner: Owner, TriggerAt: Now, Active: true})

	// Exercise ---
	err := s.cache.ApplyChangeEvent(ctx, reminder.ChangeEvent{
		Operation:  reminder.ChangeInsert,
		ReminderID: 4,
		Owner:      Owner,
	})

	// Verify ---
	s.Require().Nil(err)
	s.Len(s.cache.Snapshot(), 2)
}

func (s *testSuite) TestApplyChangeEventIgnoresOtherOwners() {
	ctx := context.Background()
	s.Require().Nil(s.cache.Load(ctx))
	calls := s.repo.ListActiveCallCount()

	err := s.cache.ApplyChangeEvent(ctx, reminder.ChangeEvent{Operation: reminder.ChangeDelete, Owner: 2})

	s.Nil(err)
	s.Equal(calls, s.repo.ListActiveCallCount())
}

func (s *testSuite) TestFollowReloadsOnChange() {
	// Setup ---
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- s.cache.Follow(ctx, s.feed) }()
	s.Eventually(func() bool { return s.feed.SubscriberCount(Owner) == 1 }, time.Second, time.Millisecond)

	// Exercise ---
	s.repo.Put(reminder.Reminder{ID: 1, Owner: Owner, TriggerAt: Now, Active: false})
	s.feed.Publish(reminder.ChangeEvent{Operation: reminder.ChangeUpdate, ReminderID: 1, Owner: Owner})

	// Verify ---
	s.Eventually(func() bool { return s.cache.IsLoaded() && len(s.cache.Snapshot()) == 0 }, time.Second, time.Millisecond)
	cancel()
	s.ErrorIs(<-done, context.Canceled)
}

func (s *testSuite) TestFollowCoalescesBurstsAndThrottles() {
	// Setup ---
	cache := New(Owner, s.repo, s.logger, metrics.Nop{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cache.Follow(ctx, s.feed) //nolint:errcheck
	s.Eventually(func() bool { return s.feed.SubscriberCount(Owner) == 1 }, time.Second, time.Millisecond)

	// Exercise ---
	for i := 0; i < 10; i++ {
		s.feed.Publish(reminder.ChangeEvent{Operation: reminder.ChangeUpdate, ReminderID: 1, Owner: Owner})
	}

	// Verify ---
	s.Eventually(func() bool { return cache.IsLoaded() }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	s.Equal(1, s.repo.ListActiveCallCount())
}
