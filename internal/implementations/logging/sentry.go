package logging

import (
	"context"
	"reminderengine/internal/core/domain/logging"

	"github.com/getsentry/sentry-go"
)

// SentryLogger forwards error records to Sentry in addition to the wrapped
// logger. Other levels are passed through untouched.
type SentryLogger struct {
	logging.Logger
	hub *sentry.Hub
}

func NewSentryLogger(inner logging.Logger, hub *sentry.Hub) *SentryLogger {
	return &SentryLogger{Logger: inner, hub: hub}
}

func (l *SentryLogger) Error(ctx context.Context, msg string, entries ...logging.LogEntry) {
	l.Logger.Error(ctx, msg, entries...)

	l.hub.WithScope(func(scope *sentry.Scope) {
		var err error
		for _, e := range entries {
			if asErr, ok := e.Value.(error); ok && err == nil {
				err = asErr
				continue
			}
			scope.SetExtra(e.Key, e.Value)
		}
		scope.SetExtra("message", msg)
		if err != nil {
			l.hub.CaptureException(err)
			return
		}
		l.hub.CaptureMessage(msg)
	})
}
