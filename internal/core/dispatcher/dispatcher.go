package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/permission"
	"sync"
	"sync/atomic"
	"time"
)

var ErrUnknownChannel = errors.New("unknown delivery channel")

type channelState struct {
	channel delivery.Channel
	enabled atomic.Bool
}

// Dispatcher surfaces deliveries through every enabled channel. Channels run
// concurrently and independently of each other and of the caller; Dispatch
// returns immediately.
type Dispatcher struct {
	log         logging.Logger
	permissions permission.Service
	metrics     metrics.Recorder
	bus         *delivery.Bus
	timeout     time.Duration
	channels    []*channelState
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	closeLock   sync.RWMutex
	closed      bool
}

func New(
	log logging.Logger,
	permissions permission.Service,
	recorder metrics.Recorder,
	bus *delivery.Bus,
	timeout time.Duration,
	channels ...delivery.Channel,
) *Dispatcher {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if permissions == nil {
		panic(e.NewNilArgumentError("permissions"))
	}
	if recorder == nil {
		panic(e.NewNilArgumentError("recorder"))
	}
	if bus == nil {
		panic(e.NewNilArgumentError("bus"))
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		log:         log,
		permissions: permissions,
		metrics:     recorder,
		bus:         bus,
		timeout:     timeout,
		channels:    make([]*channelState, 0, len(channels)),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, ch := range channels {
		if ch == nil {
			panic(e.NewNilArgumentError("channel"))
		}
		state := &channelState{channel: ch}
		state.enabled.Store(true)
		d.channels = append(d.channels, state)
	}
	return d
}

// SetEnabled turns a channel on or off for subsequent deliveries.
func (d *Dispatcher) SetEnabled(name delivery.ChannelName, enabled bool) error {
	for _, state := range d.channels {
		if state.channel.Name() == name {
			state.enabled.Store(enabled)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownChannel, name)
}

func (d *Dispatcher) IsEnabled(name delivery.ChannelName) bool {
	for _, state := range d.channels {
		if state.channel.Name() == name {
			return state.enabled.Load()
		}
	}
	return false
}

func (d *Dispatcher) Dispatch(ctx context.Context, dl delivery.Delivery) {
	d.closeLock.RLock()
	defer d.closeLock.RUnlock()
	if d.closed {
		d.log.Warning(
			ctx,
			"Delivery dropped, dispatcher is closed.",
			logging.Entry("notificationID", dl.Notification.ID),
		)
		return
	}

	d.bus.Publish(dl)
	for _, state := range d.channels {
		if !state.enabled.Load() {
			continue
		}
		d.wg.Add(1)
		go d.deliver(state.channel, dl)
	}
}

func (d *Dispatcher) deliver(ch delivery.Channel, dl delivery.Delivery) {
	defer d.wg.Done()
	ctx := d.ctx
	name := string(ch.Name())
	entries := []logging.LogEntry{
		logging.Entry("channel", name),
		logging.Entry("reminderID", dl.Reminder.ID),
		logging.Entry("notificationID", dl.Notification.ID),
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("channel %s panicked: %v", name, r)
			d.metrics.ObserveChannelDelivery(name, err)
			logging.Error(ctx, d.log, err, entries...)
		}
	}()

	if kind := ch.RequiredPermission(); kind.IsPresent {
		state, err := d.permissions.Query(ctx, dl.Reminder.Owner, kind.Value)
		if err != nil {
			d.metrics.ObserveChannelSkipped(name, "permission_unknown")
			logging.Error(ctx, d.log, err, entries...)
			return
		}
		if state != permission.StateGranted {
			d.metrics.ObserveChannelSkipped(name, "permission_"+state.String())
			d.log.Info(
				ctx,
				"Channel skipped.",
				append(
					entries,
					logging.Entry("err", permission.ErrPermissionDenied),
					logging.Entry("permission", kind.Value.String()),
					logging.Entry("state", state.String()),
				)...,
			)
			return
		}
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	err := ch.Deliver(ctx, dl)
	d.metrics.ObserveChannelDelivery(name, err)
	if err != nil {
		logging.Error(ctx, d.log, err, entries...)
		return
	}
	d.log.Debug(ctx, "Delivered.", entries...)
}

// Close cancels in-flight deliveries, waits for them to return and rejects
// further ones.
func (d *Dispatcher) Close() {
	d.closeLock.Lock()
	d.closed = true
	d.closeLock.Unlock()

	d.cancel()
	d.wg.Wait()
}
