package uow

import (
	"context"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
)

type Context interface {
	Rollback(ctx context.Context) error
	Commit(ctx context.Context) error

	Reminders() reminder.Repository
	Notifications() notification.Repository
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Context, error)
}
