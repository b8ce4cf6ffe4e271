package notification

import "errors"

// MaxSnoozeMinutes caps a single snooze at one week.
const MaxSnoozeMinutes = 7 * 24 * 60

var (
	ErrNotificationDoesNotExist = errors.New("notification does not exist")
	ErrNotificationDismissed    = errors.New("notification is already dismissed")
	ErrInvalidSnoozeDuration    = errors.New("snooze duration must be between 1 minute and 1 week")

	// ErrDuplicateDeliverySuppressed is an internal signal: the due crossing
	// has already produced a notification, so nothing must be delivered.
	ErrDuplicateDeliverySuppressed = errors.New("duplicate delivery suppressed")
)
