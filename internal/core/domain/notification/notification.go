package notification

import (
	c "reminderengine/internal/core/domain/common"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/reminder"
	"time"
)

type ID int64

// TriggerEpoch identifies one due crossing of a reminder: the Unix second of
// the reminder's trigger time at the moment it became due.
type TriggerEpoch int64

func EpochOf(triggerAt time.Time) TriggerEpoch {
	return TriggerEpoch(triggerAt.Unix())
}

func (t TriggerEpoch) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

type Notification struct {
	ID           ID
	ReminderID   reminder.ID
	TriggerEpoch TriggerEpoch
	CreatedAt    time.Time
	DismissedAt  c.Optional[time.Time]
	SnoozedUntil c.Optional[time.Time]
}

func (n *Notification) Validate() error {
	if n.ReminderID == 0 {
		return e.NewInvalidStateError("ReminderID must be set")
	}
	if n.CreatedAt.IsZero() {
		return e.NewInvalidStateError("CreatedAt must be set")
	}
	return nil
}

func (n *Notification) IsDismissed() bool {
	return n.DismissedAt.IsPresent
}
