package reminder

import (
	"context"
	"sort"
	"sync"
)

type FakeRepository struct {
	ListActiveError error
	GetByIDError    error
	UpdateError     error
	ListActiveCalls int
	Updated         []UpdateInput
	reminders       map[ID]Reminder
	lock            sync.Mutex
}

func NewFakeRepository(reminders ...Reminder) *FakeRepository {
	repo := &FakeRepository{reminders: make(map[ID]Reminder, len(reminders))}
	for _, r := range reminders {
		repo.reminders[r.ID] = r
	}
	return repo
}

func (r *FakeRepository) Put(rem Reminder) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.reminders[rem.ID] = rem
}

func (r *FakeRepository) Get(id ID) (Reminder, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.reminders[id]
	return rem, ok
}

func (r *FakeRepository) ListActive(ctx context.Context, owner OwnerID) ([]Reminder, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ListActiveCalls++
	if r.ListActiveError != nil {
		return nil, r.ListActiveError
	}
	reminders := make([]Reminder, 0, len(r.reminders))
	for _, rem := range r.reminders {
		if rem.Owner == owner && rem.Active {
			reminders = append(reminders, rem)
		}
	}
	sort.Slice(reminders, func(i, j int) bool { return reminders[i].ID < reminders[j].ID })
	return reminders, nil
}

func (r *FakeRepository) ListActiveCallCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.ListActiveCalls
}

func (r *FakeRepository) GetByID(ctx context.Context, id ID) (rem Reminder, err error) {
	if r.GetByIDError != nil {
		return rem, r.GetByIDError
	}
	rem, ok := r.Get(id)
	if !ok {
		return rem, ErrReminderDoesNotExist
	}
	return rem, nil
}

func (r *FakeRepository) Lock(ctx context.Context, id ID) error {
	return nil
}

func (r *FakeRepository) Update(ctx context.Context, input UpdateInput) (rem Reminder, err error) {
	if r.UpdateError != nil {
		return rem, r.UpdateError
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	rem, ok := r.reminders[input.ID]
	if !ok {
		return rem, ErrReminderDoesNotExist
	}
	if input.DoTriggerAtUpdate {
		rem.TriggerAt = input.TriggerAt
	}
	if input.DoActiveUpdate {
		rem.Active = input.Active
	}
	r.reminders[rem.ID] = rem
	r.Updated = append(r.Updated, input)
	return rem, nil
}

type FakeChangeFeed struct {
	SubscribeError error
	subscribers    map[OwnerID][]chan ChangeEvent
	lock           sync.Mutex
}

func NewFakeChangeFeed() *FakeChangeFeed {
	return &FakeChangeFeed{subscribers: make(map[OwnerID][]chan ChangeEvent)}
}

func (f *FakeChangeFeed) Subscribe(ctx context.Context, owner OwnerID) (<-chan ChangeEvent, error) {
	if f.SubscribeError != nil {
		return nil, f.SubscribeError
	}
	ch := make(chan ChangeEvent, 16)
	f.lock.Lock()
	f.subscribers[owner] = append(f.subscribers[owner], ch)
	f.lock.Unlock()

	go func() {
		<-ctx.Done()
		f.lock.Lock()
		defer f.lock.Unlock()
		subscribers := f.subscribers[owner]
		for ix, sub := range subscribers {
			if sub == ch {
				f.subscribers[owner] = append(subscribers[:ix], subscribers[ix+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (f *FakeChangeFeed) Publish(event ChangeEvent) {
	f.lock.Lock()
	defer f.lock.Unlock()
	for _, ch := range f.subscribers[event.Owner] {
		ch <- event
	}
}

func (f *FakeChangeFeed) SubscriberCount(owner OwnerID) int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.subscribers[owner])
}
