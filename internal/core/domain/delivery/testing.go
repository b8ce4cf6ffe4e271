package delivery

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"reminderengine/internal/core/domain/permission"
	"sync"
)

type FakeChannel struct {
	ChannelName ChannelName
	Permission  c.Optional[permission.Kind]
	DeliverErr  error
	Delivered   []Delivery
	lock        sync.Mutex
}

func NewFakeChannel(name ChannelName) *FakeChannel {
	return &FakeChannel{ChannelName: name}
}

func (ch *FakeChannel) Name() ChannelName {
	return ch.ChannelName
}

func (ch *FakeChannel) RequiredPermission() c.Optional[permission.Kind] {
	return ch.Permission
}

func (ch *FakeChannel) Deliver(ctx context.Context, d Delivery) error {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	if ch.DeliverErr != nil {
		return ch.DeliverErr
	}
	ch.Delivered = append(ch.Delivered, d)
	return nil
}

func (ch *FakeChannel) Deliveries() []Delivery {
	ch.lock.Lock()
	defer ch.lock.Unlock()
	result := make([]Delivery, len(ch.Delivered))
	copy(result, ch.Delivered)
	return result
}

// FakeDispatcher records deliveries synchronously.
type FakeDispatcher struct {
	Dispatched []Delivery
	lock       sync.Mutex
}

func NewFakeDispatcher() *FakeDispatcher {
	return &FakeDispatcher{}
}

func (d *FakeDispatcher) Dispatch(ctx context.Context, delivery Delivery) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.Dispatched = append(d.Dispatched, delivery)
}

func (d *FakeDispatcher) Deliveries() []Delivery {
	d.lock.Lock()
	defer d.lock.Unlock()
	result := make([]Delivery, len(d.Dispatched))
	copy(result, d.Dispatched)
	return result
}
