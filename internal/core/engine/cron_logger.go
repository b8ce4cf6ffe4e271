package engine

import (
	"context"
	"fmt"
	"reminderengine/internal/core/domain/logging"
)

// cronLogger routes the scheduler's own messages to the engine logger.
type cronLogger struct {
	log logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(context.Background(), "cron: "+msg, entries(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(
		context.Background(),
		"cron: "+msg,
		append(entries(keysAndValues), logging.Entry("err", err))...,
	)
}

func entries(keysAndValues []interface{}) []logging.LogEntry {
	result := make([]logging.LogEntry, 0, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			result = append(result, logging.Entry(key, nil))
			break
		}
		result = append(result, logging.Entry(key, keysAndValues[i+1]))
	}
	return result
}
