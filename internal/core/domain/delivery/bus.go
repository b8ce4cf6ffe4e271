package delivery

import (
	"sync"
	"sync/atomic"
)

// Bus fans deliveries out to in-process subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the delivery.
type Bus struct {
	mu   sync.RWMutex
	subs map[uint64]chan Delivery
	seq  atomic.Uint64
}

func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Delivery)}
}

func (b *Bus) Publish(d Delivery) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- d:
		default:
		}
	}
}

// Subscribe returns a buffered channel of deliveries and a func that closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Delivery, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Delivery, buffer)
	id := b.seq.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
		})
	}
	return ch, unsubscribe
}

// Close unsubscribes everybody.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
