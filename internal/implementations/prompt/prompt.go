package prompt

import (
	"context"
	"errors"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/r3labs/sse/v2"
)

const EventName = "reminder_prompt"

var ErrNoListener = errors.New("no client is listening to the owner's event stream")

type Publisher interface {
	Publish(id string, event *sse.Event)
	StreamExists(id string) bool
}

// SSE shows the interactive prompt by pushing an event to the owner's
// stream. The prompt needs no platform permission. Streams are created when
// a client connects, so a missing stream means nobody would see the prompt.
type SSE struct {
	publisher Publisher
}

func NewSSE(publisher Publisher) *SSE {
	if publisher == nil {
		panic(e.NewNilArgumentError("publisher"))
	}
	return &SSE{publisher: publisher}
}

func (s *SSE) Name() delivery.ChannelName {
	return delivery.ChannelPrompt
}

func (s *SSE) RequiredPermission() c.Optional[permission.Kind] {
	return c.Optional[permission.Kind]{}
}

func (s *SSE) Deliver(ctx context.Context, d delivery.Delivery) error {
	data, err := json.Marshal(newPayload(d))
	if err != nil {
		return err
	}
	stream := StreamID(d.Reminder.Owner)
	if !s.publisher.StreamExists(stream) {
		return ErrNoListener
	}
	s.publisher.Publish(stream, &sse.Event{
		ID:    []byte(strconv.FormatInt(int64(d.Notification.ID), 10)),
		Event: []byte(EventName),
		Data:  data,
	})
	return nil
}

func StreamID(owner reminder.OwnerID) string {
	return strconv.FormatInt(int64(owner), 10)
}

type Payload struct {
	NotificationID int64                   `json:"notification_id"`
	ReminderID     int64                   `json:"reminder_id"`
	Message        string                  `json:"message"`
	TriggerAt      time.Time               `json:"trigger_at"`
	Actions        []delivery.PromptAction `json:"actions"`
}

func newPayload(d delivery.Delivery) Payload {
	return Payload{
		NotificationID: int64(d.Notification.ID),
		ReminderID:     int64(d.Reminder.ID),
		Message:        d.Reminder.Message,
		TriggerAt:      d.Notification.TriggerEpoch.Time(),
		Actions:        delivery.PromptActions(),
	}
}
