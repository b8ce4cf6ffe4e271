package delivery

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"time"
)

type ChannelName string

const (
	ChannelAudio  ChannelName = "audio"
	ChannelPrompt ChannelName = "prompt"
	ChannelSystem ChannelName = "system"
	ChannelEmail  ChannelName = "email"
)

// Delivery is a freshly created notification together with the reminder it
// was raised for.
type Delivery struct {
	Reminder     reminder.Reminder
	Notification notification.Notification
	At           time.Time
}

// Channel surfaces a delivery to the user in one particular way. Deliver is
// best-effort: an error is logged by the caller and never affects other
// channels.
type Channel interface {
	Name() ChannelName
	// RequiredPermission returns the permission that must be granted before
	// Deliver is called, if any.
	RequiredPermission() c.Optional[permission.Kind]
	Deliver(ctx context.Context, d Delivery) error
}

// Dispatcher fans a delivery out to the enabled channels without blocking.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Delivery)
}

type PromptAction struct {
	Label         string `json:"label"`
	Kind          string `json:"kind"`
	SnoozeMinutes int    `json:"snooze_minutes,omitempty"`
}

const (
	ActionSnooze       = "snooze"
	ActionSnoozeCustom = "snooze_custom"
	ActionDismiss      = "dismiss"
)

// PromptActions returns the actions offered by the interactive prompt.
func PromptActions() []PromptAction {
	return []PromptAction{
		{Label: "Snooze 5 min", Kind: ActionSnooze, SnoozeMinutes: 5},
		{Label: "Snooze 10 min", Kind: ActionSnooze, SnoozeMinutes: 10},
		{Label: "Snooze 30 min", Kind: ActionSnooze, SnoozeMinutes: 30},
		{Label: "Snooze...", Kind: ActionSnoozeCustom},
		{Label: "Dismiss", Kind: ActionDismiss},
	}
}
