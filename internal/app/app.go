package app

import (
	"fmt"
	"net/http"
	"reminderengine/internal/app/deps"
	"reminderengine/internal/app/services"
	"reminderengine/internal/core/engine"
	setchannelenabled "reminderengine/internal/http/handlers/channels/set_channel_enabled"
	"reminderengine/internal/http/handlers/events"
	dismissnotification "reminderengine/internal/http/handlers/notifications/dismiss_notification"
	snoozenotification "reminderengine/internal/http/handlers/notifications/snooze_notification"
	getpermission "reminderengine/internal/http/handlers/permissions/get_permission"
	updatepermission "reminderengine/internal/http/handlers/permissions/update_permission"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitEngine(deps *deps.Deps, s *services.Services) *engine.Engine {
	eng, err := engine.New(
		engine.Config{
			Owner:         deps.Owner,
			Period:        deps.Config.DetectorPeriod,
			Window:        deps.Config.DetectorWindow,
			RefreshPeriod: deps.Config.CacheRefreshPeriod,
		},
		engine.Deps{
			Log:        deps.Logger,
			Cache:      s.Cache,
			Feed:       deps.ChangeFeed,
			Detect:     s.DetectDueReminders,
			Snooze:     s.SnoozeNotification,
			Dismiss:    s.DismissNotification,
			Dispatcher: s.Dispatcher,
			Bus:        deps.Bus,
			Metrics:    deps.Metrics,
		},
	)
	if err != nil {
		panic(err)
	}
	return eng
}

func InitHttpServer(deps *deps.Deps, eng *engine.Engine) *http.Server {
	notificationsRouter := chi.NewRouter()
	notificationsRouter.Method(http.MethodPost, "/{notificationID:[0-9]+}/snooze", snoozenotification.New(eng))
	notificationsRouter.Method(http.MethodPost, "/{notificationID:[0-9]+}/dismiss", dismissnotification.New(eng))

	permissionsRouter := chi.NewRouter()
	permissionsRouter.Method(http.MethodGet, "/{kind}", getpermission.New(deps.Permissions, deps.Owner))
	permissionsRouter.Method(
		http.MethodPut,
		"/{kind}",
		updatepermission.New(deps.Logger, deps.Permissions, deps.Owner),
	)

	channelsRouter := chi.NewRouter()
	channelsRouter.Method(http.MethodPut, "/{channel}", setchannelenabled.New(eng))

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))
	router.Method(http.MethodGet, "/events", events.New(deps.Logger, deps.SseServer, deps.Owner))
	router.Method(
		http.MethodGet,
		"/metrics",
		promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}),
	)
	router.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(deps.Config.HttpRateLimit, time.Minute))
		r.Mount("/notifications", notificationsRouter)
		r.Mount("/permissions", permissionsRouter)
		r.Mount("/channels", channelsRouter)
	})

	address := fmt.Sprintf("0.0.0.0:%d", deps.Config.Port)

	return &http.Server{
		Handler:           router,
		Addr:              address,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
