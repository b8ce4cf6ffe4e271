package cache

import (
	"context"
	"errors"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/reminder"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var ErrFeedClosed = errors.New("change feed closed")

var ResubscribeDelay = 5 * time.Second

// Cache holds the most recent known set of active reminders of one owner.
// Readers get an immutable snapshot without locking; the snapshot is replaced
// wholesale on every successful reload.
type Cache struct {
	owner    reminder.OwnerID
	repo     reminder.Repository
	log      logging.Logger
	metrics  metrics.Recorder
	limiter  *rate.Limiter
	snapshot atomic.Pointer[[]reminder.Reminder]
	loaded   atomic.Bool
	reload   sync.Mutex
}

func New(
	owner reminder.OwnerID,
	repo reminder.Repository,
	log logging.Logger,
	recorder metrics.Recorder,
	reloadEvery time.Duration,
) *Cache {
	if repo == nil {
		panic(e.NewNilArgumentError("repo"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if recorder == nil {
		panic(e.NewNilArgumentError("recorder"))
	}
	limit := rate.Inf
	if reloadEvery > 0 {
		limit = rate.Every(reloadEvery)
	}
	c := &Cache{
		owner:   owner,
		repo:    repo,
		log:     log,
		metrics: recorder,
		limiter: rate.NewLimiter(limit, 1),
	}
	empty := make([]reminder.Reminder, 0)
	c.snapshot.Store(&empty)
	return c
}

// Load replaces the snapshot with the owner's active reminders. On failure the
// last known good snapshot is kept.
func (c *Cache) Load(ctx context.Context) error {
	c.reload.Lock()
	defer c.reload.Unlock()

	reminders, err := c.repo.ListActive(ctx, c.owner)
	if err != nil {
		err = e.NewGatewayError("list active reminders", err)
		c.metrics.ObserveCacheReload(0, err)
		return err
	}
	active := make([]reminder.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r.Active {
			active = append(active, r)
		}
	}
	c.snapshot.Store(&active)
	c.loaded.Store(true)
	c.metrics.ObserveCacheReload(len(active), nil)
	c.log.Debug(ctx, "Reminder cache reloaded.", logging.Entry("size", len(active)))
	return nil
}

// ApplyChangeEvent reloads the snapshot for any change of the owner's
// reminders. Events of other owners are ignored.
func (c *Cache) ApplyChangeEvent(ctx context.Context, event reminder.ChangeEvent) error {
	if event.Owner != c.owner {
		return nil
	}
	return c.Load(ctx)
}

// Snapshot returns the current reminders. The returned slice must not be
// modified.
func (c *Cache) Snapshot() []reminder.Reminder {
	return *c.snapshot.Load()
}

func (c *Cache) IsLoaded() bool {
	return c.loaded.Load()
}

// Follow applies change events from feed until ctx is done. Events arriving
// while a reload is pending are coalesced into one reload, and reloads are
// throttled. A lost feed is resubscribed after ResubscribeDelay.
func (c *Cache) Follow(ctx context.Context, feed reminder.ChangeFeed) error {
	return c.FollowFrom(ctx, feed, nil)
}

// FollowFrom is Follow starting with an existing subscription, so that a
// caller can subscribe before the initial Load. A nil events subscribes anew.
func (c *Cache) FollowFrom(
	ctx context.Context,
	feed reminder.ChangeFeed,
	events <-chan reminder.ChangeEvent,
) error {
	if feed == nil {
		panic(e.NewNilArgumentError("feed"))
	}
	for {
		err := c.follow(ctx, feed, events)
		events = nil
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Error(ctx, c.log, err, logging.Entry("owner", c.owner))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ResubscribeDelay):
		}
		// Events may have been missed while the feed was down.
		if err := c.Load(ctx); err != nil {
			logging.Error(ctx, c.log, err, logging.Entry("owner", c.owner))
		}
	}
}

func (c *Cache) follow(
	ctx context.Context,
	feed reminder.ChangeFeed,
	events <-chan reminder.ChangeEvent,
) error {
	if events == nil {
		var err error
		events, err = c.Subscribe(ctx, feed)
		if err != nil {
			return err
		}
	}
	for {
		var event reminder.ChangeEvent
		var ok bool
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok = <-events:
			if !ok {
				return ErrFeedClosed
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		event, closed := c.drain(events, event)
		if err := c.ApplyChangeEvent(ctx, event); err != nil {
			logging.Error(
				ctx,
				c.log,
				err,
				logging.Entry("operation", event.Operation.String()),
				logging.Entry("reminderID", event.ReminderID),
			)
		}
		if closed {
			return ErrFeedClosed
		}
	}
}

func (c *Cache) Subscribe(
	ctx context.Context,
	feed reminder.ChangeFeed,
) (<-chan reminder.ChangeEvent, error) {
	events, err := feed.Subscribe(ctx, c.owner)
	if err != nil {
		return nil, e.NewGatewayError("subscribe to change feed", err)
	}
	return events, nil
}

// drain consumes the events already queued so that they are served by a single
// reload. It returns the event to apply and whether the channel got closed.
func (c *Cache) drain(
	events <-chan reminder.ChangeEvent,
	first reminder.ChangeEvent,
) (reminder.ChangeEvent, bool) {
	result := first
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return result, true
			}
			if event.Owner == c.owner {
				result = event
			}
		default:
			return result, false
		}
	}
}
