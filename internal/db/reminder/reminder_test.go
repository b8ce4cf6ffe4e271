package reminder

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/db"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/suite"
)

var Now = time.Now().UTC().Truncate(time.Second)

type testSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PgxReminderRepository
}

func (s *testSuite) SetupSuite() {
	s.pool = db.CreateTestPool(s.T())
	s.repo = NewPgxReminderRepository(s.pool)
}

func (s *testSuite) TearDownSuite() {
	s.pool.Close()
}

func (s *testSuite) TearDownTest() {
	db.TruncateTables(s.pool)
}

func TestPgxReminderRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) create(owner reminder.OwnerID, active bool, every c.Optional[reminder.Every]) reminder.Reminder {
	rem, err := s.repo.Create(
		context.Background(),
		CreateInput{
			Owner:     owner,
			Message:   "test",
			TriggerAt: Now.Add(time.Hour),
			Every:     every,
			Active:    active,
			CreatedAt: Now,
		},
	)
	s.Require().Nil(err)
	return rem
}

func (s *testSuite) TestCreate() {
	rem := s.create(1, true, c.Some(reminder.EveryDay))

	s.NotZero(rem.ID)
	s.Equal(reminder.OwnerID(1), rem.Owner)
	s.Equal("test", rem.Message)
	s.True(Now.Add(time.Hour).Equal(rem.TriggerAt))
	s.Equal(c.Some(reminder.EveryDay), rem.Every)
	s.True(rem.Active)
}

func (s *testSuite) TestListActive() {
	// Setup ---
	first := s.create(1, true, c.Optional[reminder.Every]{})
	s.create(1, false, c.Optional[reminder.Every]{})
	s.create(2, true, c.Optional[reminder.Every]{})
	second := s.create(1, true, c.Some(reminder.EveryHour))

	// Exercise ---
	reminders, err := s.repo.ListActive(context.Background(), 1)

	// Verify ---
	s.Require().Nil(err)
	s.Require().Len(reminders, 2)
	s.Equal(first.ID, reminders[0].ID)
	s.Equal(second.ID, reminders[1].ID)
}

func (s *testSuite) TestGetByIDNotFound() {
	_, err := s.repo.GetByID(context.Background(), 100500)

	s.ErrorIs(err, reminder.ErrReminderDoesNotExist)
}

func (s *testSuite) TestUpdate() {
	// Setup ---
	rem := s.create(1, true, c.Optional[reminder.Every]{})
	triggerAt := Now.Add(10 * time.Minute)

	// Exercise ---
	updated, err := s.repo.Update(
		context.Background(),
		reminder.UpdateInput{ID: rem.ID, DoTriggerAtUpdate: true, TriggerAt: triggerAt},
	)

	// Verify ---
	s.Require().Nil(err)
	s.True(triggerAt.Equal(updated.TriggerAt))
	s.True(updated.Active)

	updated, err = s.repo.Update(
		context.Background(),
		reminder.UpdateInput{ID: rem.ID, DoActiveUpdate: true, Active: false},
	)
	s.Require().Nil(err)
	s.False(updated.Active)
	s.True(triggerAt.Equal(updated.TriggerAt))
}

func (s *testSuite) TestUpdateNotFound() {
	_, err := s.repo.Update(
		context.Background(),
		reminder.UpdateInput{ID: 100500, DoActiveUpdate: true},
	)

	s.ErrorIs(err, reminder.ErrReminderDoesNotExist)
}

func (s *testSuite) TestLockWithinTransaction() {
	// Setup ---
	rem := s.create(1, true, c.Optional[reminder.Every]{})
	ctx := context.Background()
	tx, err := s.pool.Begin(ctx)
	s.Require().Nil(err)
	defer tx.Rollback(ctx) //nolint:errcheck

	// Exercise ---
	repo := NewPgxReminderRepository(tx)
	err = repo.Lock(ctx, rem.ID)

	// Verify ---
	s.Nil(err)
	s.ErrorIs(repo.Lock(ctx, 100500), reminder.ErrReminderDoesNotExist)
}
