package reminder

import (
	c "reminderengine/internal/core/domain/common"
	e "reminderengine/internal/core/domain/errors"
	"time"
)

type ID int64

type OwnerID int64

type Reminder struct {
	ID        ID
	Owner     OwnerID
	Message   string
	TriggerAt time.Time
	Every     c.Optional[Every]
	Active    bool
	CreatedAt time.Time
}

func (r *Reminder) Validate() error {
	if r.Every.IsPresent {
		if err := r.Every.Value.Validate(); err != nil {
			return e.NewInvalidStateError("value of Every is not valid")
		}
	}
	if r.TriggerAt.IsZero() {
		return e.NewInvalidStateError("TriggerAt must be set")
	}
	return nil
}

func (r *Reminder) IsRecurring() bool {
	return r.Every.IsPresent
}

// IsDueAt reports whether the reminder has crossed its trigger time no longer
// than window ago. Reminders older than the window are missed and never become
// due again, future reminders are not due yet.
func (r *Reminder) IsDueAt(now time.Time, window time.Duration) bool {
	if !r.Active {
		return false
	}
	delta := now.Sub(r.TriggerAt)
	return delta >= 0 && delta <= window
}
