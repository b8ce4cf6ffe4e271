package notification

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/reminder"
	"time"
)

type CreateIfAbsentInput struct {
	ReminderID   reminder.ID
	TriggerEpoch TriggerEpoch
	CreatedAt    time.Time
}

// Ledger guarantees at most one notification per due crossing. The check and
// the insert are atomic at the storage level, so concurrent engines sharing
// the same store never create two notifications for the same crossing.
type Ledger interface {
	// CreateIfAbsent returns created=false together with the existing
	// notification when the crossing was already handled.
	CreateIfAbsent(ctx context.Context, input CreateIfAbsentInput) (n Notification, created bool, err error)
}

type UpdateInput struct {
	ID                   ID
	DoDismissedAtUpdate  bool
	DismissedAt          c.Optional[time.Time]
	DoSnoozedUntilUpdate bool
	SnoozedUntil         c.Optional[time.Time]
}

type Repository interface {
	Ledger
	GetByID(ctx context.Context, id ID) (Notification, error)
	// Lock works only within a unit of work.
	Lock(ctx context.Context, id ID) error
	Update(ctx context.Context, input UpdateInput) (Notification, error)
}
