package schema

import (
	"time"

	"github.com/goccy/go-json"
)

// SystemNotification asks the platform notification agent to show an
// OS-level notification.
type SystemNotification struct {
	NotificationID int64     `json:"notification_id"`
	ReminderID     int64     `json:"reminder_id"`
	OwnerID        int64     `json:"owner_id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	TriggerAt      time.Time `json:"trigger_at"`
}

func (n *SystemNotification) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func (n *SystemNotification) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}

// NotificationActivated is sent back by the agent when the user clicks an
// OS-level notification.
type NotificationActivated struct {
	NotificationID int64 `json:"notification_id"`
	OwnerID        int64 `json:"owner_id"`
}

func (a *NotificationActivated) Marshal() ([]byte, error) {
	return json.Marshal(a)
}

func (a *NotificationActivated) Unmarshal(data []byte) error {
	return json.Unmarshal(data, a)
}
