package response

import (
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"time"
)

type Reminder struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	TriggerAt time.Time `json:"trigger_at"`
	Every     *string   `json:"every"`
	Active    bool      `json:"active"`
}

func (r *Reminder) FromDomainType(rem reminder.Reminder) {
	r.ID = int64(rem.ID)
	r.Message = rem.Message
	r.TriggerAt = rem.TriggerAt
	r.Active = rem.Active
	if rem.Every.IsPresent {
		every := rem.Every.Value.String()
		r.Every = &every
	}
}

type Notification struct {
	ID           int64      `json:"id"`
	ReminderID   int64      `json:"reminder_id"`
	TriggerAt    time.Time  `json:"trigger_at"`
	CreatedAt    time.Time  `json:"created_at"`
	DismissedAt  *time.Time `json:"dismissed_at"`
	SnoozedUntil *time.Time `json:"snoozed_until"`
}

func (n *Notification) FromDomainType(notif notification.Notification) {
	n.ID = int64(notif.ID)
	n.ReminderID = int64(notif.ReminderID)
	n.TriggerAt = notif.TriggerEpoch.Time()
	n.CreatedAt = notif.CreatedAt
	if notif.DismissedAt.IsPresent {
		n.DismissedAt = &notif.DismissedAt.Value
	}
	if notif.SnoozedUntil.IsPresent {
		n.SnoozedUntil = &notif.SnoozedUntil.Value
	}
}
