package services

import (
	"context"
	"reminderengine/internal/app/deps"
	"reminderengine/internal/core/cache"
	"reminderengine/internal/core/dispatcher"
	dl "reminderengine/internal/core/domain/logging"
	drl "reminderengine/internal/core/domain/rate_limiter"
	"reminderengine/internal/core/services"
	activatenotification "reminderengine/internal/core/services/activate_notification"
	detectduereminders "reminderengine/internal/core/services/detect_due_reminders"
	dismissnotification "reminderengine/internal/core/services/dismiss_notification"
	ratelimiting "reminderengine/internal/core/services/rate_limiting"
	snoozenotification "reminderengine/internal/core/services/snooze_notification"
)

type Services struct {
	Cache      *cache.Cache
	Dispatcher *dispatcher.Dispatcher

	DetectDueReminders   services.Service[detectduereminders.Input, detectduereminders.Result]
	SnoozeNotification   services.Service[snoozenotification.Input, snoozenotification.Result]
	DismissNotification  services.Service[dismissnotification.Input, dismissnotification.Result]
	ActivateNotification services.Service[activatenotification.Input, activatenotification.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.Cache = cache.New(
		deps.Owner,
		deps.ReminderRepository,
		deps.Logger,
		deps.Metrics,
		deps.Config.CacheReloadInterval,
	)
	s.Dispatcher = dispatcher.New(
		deps.Logger,
		deps.Permissions,
		deps.Metrics,
		deps.Bus,
		deps.Config.ChannelTimeout,
		deps.Channels...,
	)
	for name, enabled := range deps.ChannelToggles() {
		if !s.Dispatcher.IsEnabled(name) && !enabled {
			continue
		}
		if err := s.Dispatcher.SetEnabled(name, enabled); err != nil {
			deps.Logger.Warning(
				context.Background(),
				"Could not toggle delivery channel.",
				dl.Entry("channel", name),
				dl.Entry("err", err),
			)
		}
	}

	s.DetectDueReminders = detectduereminders.New(
		deps.Logger,
		s.Cache,
		deps.NotificationRepository,
		s.Dispatcher,
		deps.Config.DetectorWindow,
		deps.Now,
	)
	s.SnoozeNotification = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.SnoozeRateLimit},
		snoozenotification.New(deps.Logger, deps.UnitOfWork, deps.Now),
	)
	s.DismissNotification = ratelimiting.WithRateLimiting(
		deps.Logger,
		deps.RateLimiter,
		drl.Limit{Interval: drl.Minute, Value: deps.Config.DismissRateLimit},
		dismissnotification.New(deps.Logger, deps.UnitOfWork, deps.Now),
	)
	s.ActivateNotification = activatenotification.New(
		deps.Logger,
		deps.ReminderRepository,
		deps.NotificationRepository,
		deps.PromptChannel,
		deps.Now,
	)

	return s
}
