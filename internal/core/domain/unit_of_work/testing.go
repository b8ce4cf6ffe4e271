package uow

import (
	"context"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"sync"
)

type FakeUnitOfWorkContext struct {
	ReminderRepository     *reminder.FakeRepository
	NotificationRepository *notification.FakeRepository
	WasRollbackCalled      bool
	WasCommitCalled        bool
	lock                   sync.Mutex
}

func NewFakeUnitOfWorkContext(
	reminderRepository *reminder.FakeRepository,
	notificationRepository *notification.FakeRepository,
) *FakeUnitOfWorkContext {
	return &FakeUnitOfWorkContext{
		ReminderRepository:     reminderRepository,
		NotificationRepository: notificationRepository,
	}
}

func (c *FakeUnitOfWorkContext) Rollback(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.WasRollbackCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Commit(ctx context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.WasCommitCalled = true
	return nil
}

func (c *FakeUnitOfWorkContext) Reminders() reminder.Repository {
	return c.ReminderRepository
}

func (c *FakeUnitOfWorkContext) Notifications() notification.Repository {
	return c.NotificationRepository
}

type FakeUnitOfWork struct {
	Context    *FakeUnitOfWorkContext
	BeginError error
}

func NewFakeUnitOfWork(
	reminderRepository *reminder.FakeRepository,
	notificationRepository *notification.FakeRepository,
) *FakeUnitOfWork {
	return &FakeUnitOfWork{
		Context: NewFakeUnitOfWorkContext(reminderRepository, notificationRepository),
	}
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) (Context, error) {
	if u.BeginError != nil {
		return nil, u.BeginError
	}
	return u.Context, nil
}
