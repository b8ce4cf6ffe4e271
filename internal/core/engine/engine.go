package engine

import (
	"context"
	"errors"
	"fmt"
	"reminderengine/internal/core/cache"
	"reminderengine/internal/core/dispatcher"
	"reminderengine/internal/core/domain/delivery"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/core/services"
	detectduereminders "reminderengine/internal/core/services/detect_due_reminders"
	dismissnotification "reminderengine/internal/core/services/dismiss_notification"
	snoozenotification "reminderengine/internal/core/services/snooze_notification"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	ErrAlreadyStarted = errors.New("engine is already started")
	ErrStopped        = errors.New("engine is stopped")
	ErrInvalidConfig  = errors.New("invalid engine config")
)

type Config struct {
	Owner reminder.OwnerID
	// Period is the cadence of due detection.
	Period time.Duration
	// Window is how long after its trigger time a reminder is still
	// delivered. It must not be shorter than Period, otherwise reminders
	// could fall between two scans.
	Window time.Duration
	// RefreshPeriod is the cadence of full cache reloads, a safety net for
	// lost change events. Zero disables it.
	RefreshPeriod time.Duration
}

func (c Config) Validate() error {
	if c.Period < time.Second {
		return fmt.Errorf("%w: period must be at least one second", ErrInvalidConfig)
	}
	if c.Window < c.Period {
		return fmt.Errorf("%w: window must not be shorter than period", ErrInvalidConfig)
	}
	return nil
}

// Engine watches the reminders of one owner and surfaces each due reminder
// once per due crossing. It is constructed per session and owns its timer,
// cache, dispatcher and change feed subscription.
type Engine struct {
	id         string
	config     Config
	log        logging.Logger
	cache      *cache.Cache
	feed       reminder.ChangeFeed
	detect     services.Service[detectduereminders.Input, detectduereminders.Result]
	snooze     services.Service[snoozenotification.Input, snoozenotification.Result]
	dismiss    services.Service[dismissnotification.Input, dismissnotification.Result]
	dispatcher *dispatcher.Dispatcher
	bus        *delivery.Bus
	metrics    metrics.Recorder

	lock       sync.Mutex
	started    bool
	stopped    bool
	cron       *cron.Cron
	runCtx     context.Context
	cancel     context.CancelFunc
	followDone chan struct{}
}

type Deps struct {
	Log        logging.Logger
	Cache      *cache.Cache
	Feed       reminder.ChangeFeed
	Detect     services.Service[detectduereminders.Input, detectduereminders.Result]
	Snooze     services.Service[snoozenotification.Input, snoozenotification.Result]
	Dismiss    services.Service[dismissnotification.Input, dismissnotification.Result]
	Dispatcher *dispatcher.Dispatcher
	Bus        *delivery.Bus
	Metrics    metrics.Recorder
}

func New(config Config, deps Deps) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if deps.Log == nil {
		panic(e.NewNilArgumentError("Log"))
	}
	if deps.Cache == nil {
		panic(e.NewNilArgumentError("Cache"))
	}
	if deps.Feed == nil {
		panic(e.NewNilArgumentError("Feed"))
	}
	if deps.Detect == nil {
		panic(e.NewNilArgumentError("Detect"))
	}
	if deps.Snooze == nil {
		panic(e.NewNilArgumentError("Snooze"))
	}
	if deps.Dismiss == nil {
		panic(e.NewNilArgumentError("Dismiss"))
	}
	if deps.Dispatcher == nil {
		panic(e.NewNilArgumentError("Dispatcher"))
	}
	if deps.Bus == nil {
		panic(e.NewNilArgumentError("Bus"))
	}
	if deps.Metrics == nil {
		panic(e.NewNilArgumentError("Metrics"))
	}
	return &Engine{
		id:         uuid.NewString(),
		config:     config,
		log:        deps.Log,
		cache:      deps.Cache,
		feed:       deps.Feed,
		detect:     deps.Detect,
		snooze:     deps.Snooze,
		dismiss:    deps.Dismiss,
		dispatcher: deps.Dispatcher,
		bus:        deps.Bus,
		metrics:    deps.Metrics,
	}, nil
}

func (eng *Engine) ID() string {
	return eng.id
}

// Start subscribes to the change feed, loads the cache and starts periodic
// due detection. The feed is subscribed before the initial load. A failed
// subscription or load is logged; the follower retries and the cache is
// filled by the next change event or refresh.
func (eng *Engine) Start(ctx context.Context) error {
	eng.lock.Lock()
	defer eng.lock.Unlock()
	if eng.stopped {
		return ErrStopped
	}
	if eng.started {
		return ErrAlreadyStarted
	}

	entries := eng.entries()
	eng.runCtx, eng.cancel = context.WithCancel(context.Background())
	events, err := eng.cache.Subscribe(eng.runCtx, eng.feed)
	if err != nil {
		logging.Error(ctx, eng.log, err, entries...)
	}
	if err := eng.cache.Load(ctx); err != nil {
		logging.Error(ctx, eng.log, err, entries...)
	}

	eng.followDone = make(chan struct{})
	go func() {
		defer close(eng.followDone)
		eng.cache.FollowFrom(eng.runCtx, eng.feed, events) //nolint:errcheck
	}()

	logger := cronLogger{log: eng.log}
	eng.cron = cron.New(
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		cron.WithLogger(logger),
	)
	eng.cron.Schedule(cron.Every(eng.config.Period), cron.FuncJob(func() { eng.Scan(eng.runCtx) }))
	if eng.config.RefreshPeriod > 0 {
		eng.cron.Schedule(cron.Every(eng.config.RefreshPeriod), cron.FuncJob(func() { eng.refresh(eng.runCtx) }))
	}
	eng.cron.Start()
	eng.started = true

	eng.log.Info(
		ctx,
		"Engine started.",
		append(
			entries,
			logging.Entry("period", eng.config.Period.String()),
			logging.Entry("window", eng.config.Window.String()),
		)...,
	)
	return nil
}

// Scan runs due detection once against the current cache snapshot.
func (eng *Engine) Scan(ctx context.Context) detectduereminders.Result {
	startedAt := time.Now()
	result, err := eng.detect.Run(ctx, detectduereminders.Input{})
	eng.metrics.ObserveScan(result.Outcome, time.Since(startedAt))
	if err != nil {
		logging.Error(ctx, eng.log, err, eng.entries()...)
		return result
	}
	if result.Outcome.Due > 0 {
		eng.log.Info(
			ctx,
			"Scan finished.",
			append(
				eng.entries(),
				logging.Entry("due", result.Outcome.Due),
				logging.Entry("delivered", result.Outcome.Delivered),
				logging.Entry("suppressed", result.Outcome.Suppressed),
				logging.Entry("failed", result.Outcome.Failed),
			)...,
		)
	}
	return result
}

func (eng *Engine) refresh(ctx context.Context) {
	if err := eng.cache.Load(ctx); err != nil {
		logging.Error(ctx, eng.log, err, eng.entries()...)
	}
}

// Stop cancels the timer and the change feed subscription, waits for a
// running scan and cancels in-flight deliveries. Nothing fires after Stop
// returns. Stop is idempotent.
func (eng *Engine) Stop(ctx context.Context) error {
	eng.lock.Lock()
	defer eng.lock.Unlock()
	if eng.stopped {
		return nil
	}
	eng.stopped = true

	if eng.started {
		stopped := eng.cron.Stop()
		select {
		case <-stopped.Done():
		case <-ctx.Done():
			eng.log.Warning(ctx, "Engine stop timed out waiting for the running scan.", eng.entries()...)
		}
		eng.cancel()
		<-eng.followDone
	}
	eng.dispatcher.Close()
	eng.bus.Close()
	eng.log.Info(ctx, "Engine stopped.", eng.entries()...)
	return nil
}

// Subscribe returns a stream of deliveries made by the engine and a func
// that ends the subscription.
func (eng *Engine) Subscribe(buffer int) (<-chan delivery.Delivery, func()) {
	return eng.bus.Subscribe(buffer)
}

func (eng *Engine) Snooze(
	ctx context.Context,
	id notification.ID,
	minutes int,
) (snoozenotification.Result, error) {
	result, err := eng.snooze.Run(
		ctx,
		snoozenotification.Input{Owner: eng.config.Owner, NotificationID: id, Minutes: minutes},
	)
	eng.metrics.ObserveUserAction("snooze", err)
	if err == nil {
		eng.refresh(ctx)
	}
	return result, err
}

func (eng *Engine) Dismiss(ctx context.Context, id notification.ID) (dismissnotification.Result, error) {
	result, err := eng.dismiss.Run(
		ctx,
		dismissnotification.Input{Owner: eng.config.Owner, NotificationID: id},
	)
	eng.metrics.ObserveUserAction("dismiss", err)
	if err == nil && !result.AlreadyDismissed {
		eng.refresh(ctx)
	}
	return result, err
}

func (eng *Engine) SetChannelEnabled(name delivery.ChannelName, enabled bool) error {
	return eng.dispatcher.SetEnabled(name, enabled)
}

func (eng *Engine) Owner() reminder.OwnerID {
	return eng.config.Owner
}

func (eng *Engine) entries() []logging.LogEntry {
	return []logging.LogEntry{
		logging.Entry("engineID", eng.id),
		logging.Entry("owner", eng.config.Owner),
	}
}
