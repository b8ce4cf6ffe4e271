package notification

import (
	"context"
	"reminderengine/internal/core/domain/reminder"
	"sync"
)

type crossing struct {
	reminderID   reminder.ID
	triggerEpoch TriggerEpoch
}

// FakeRepository keeps notifications in memory. The crossing index plays the
// role of the unique constraint of the real store.
type FakeRepository struct {
	CreateError   error
	UpdateError   error
	CreateCalls   int
	Updated       []UpdateInput
	notifications map[ID]Notification
	byCrossing    map[crossing]ID
	lastID        ID
	lock          sync.Mutex
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{
		notifications: make(map[ID]Notification),
		byCrossing:    make(map[crossing]ID),
	}
}

func (r *FakeRepository) CreateIfAbsent(
	ctx context.Context,
	input CreateIfAbsentInput,
) (n Notification, created bool, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.CreateCalls++
	if r.CreateError != nil {
		return n, false, r.CreateError
	}
	key := crossing{reminderID: input.ReminderID, triggerEpoch: input.TriggerEpoch}
	if id, ok := r.byCrossing[key]; ok {
		return r.notifications[id], false, nil
	}
	r.lastID++
	n = Notification{
		ID:           r.lastID,
		ReminderID:   input.ReminderID,
		TriggerEpoch: input.TriggerEpoch,
		CreatedAt:    input.CreatedAt,
	}
	r.notifications[n.ID] = n
	r.byCrossing[key] = n.ID
	return n, true, nil
}

func (r *FakeRepository) GetByID(ctx context.Context, id ID) (n Notification, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return n, ErrNotificationDoesNotExist
	}
	return n, nil
}

func (r *FakeRepository) Lock(ctx context.Context, id ID) error {
	return nil
}

func (r *FakeRepository) Update(ctx context.Context, input UpdateInput) (n Notification, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.UpdateError != nil {
		return n, r.UpdateError
	}
	n, ok := r.notifications[input.ID]
	if !ok {
		return n, ErrNotificationDoesNotExist
	}
	if input.DoDismissedAtUpdate {
		n.DismissedAt = input.DismissedAt
	}
	if input.DoSnoozedUntilUpdate {
		n.SnoozedUntil = input.SnoozedUntil
	}
	r.notifications[n.ID] = n
	r.Updated = append(r.Updated, input)
	return n, nil
}

func (r *FakeRepository) Put(n Notification) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.notifications[n.ID] = n
	r.byCrossing[crossing{reminderID: n.ReminderID, triggerEpoch: n.TriggerEpoch}] = n.ID
	if n.ID > r.lastID {
		r.lastID = n.ID
	}
}

// ForReminder returns all notifications raised for the reminder.
func (r *FakeRepository) ForReminder(reminderID reminder.ID) []Notification {
	r.lock.Lock()
	defer r.lock.Unlock()
	result := make([]Notification, 0)
	for id := ID(1); id <= r.lastID; id++ {
		n, ok := r.notifications[id]
		if ok && n.ReminderID == reminderID {
			result = append(result, n)
		}
	}
	return result
}
