package reminder

import (
	"context"
	"time"
)

type UpdateInput struct {
	ID                ID
	DoTriggerAtUpdate bool
	TriggerAt         time.Time
	DoActiveUpdate    bool
	Active            bool
}

type Repository interface {
	ListActive(ctx context.Context, owner OwnerID) ([]Reminder, error)
	GetByID(ctx context.Context, id ID) (Reminder, error)
	// Lock works only within a unit of work.
	Lock(ctx context.Context, id ID) error
	Update(ctx context.Context, input UpdateInput) (Reminder, error)
}
