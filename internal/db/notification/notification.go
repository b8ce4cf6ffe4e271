package notification

import (
	"context"
	"errors"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/db"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const notificationColumns = "id, reminder_id, trigger_epoch, created_at, dismissed_at, snoozed_until"

const insertNotificationIfAbsent = `
INSERT INTO reminder_notification (reminder_id, trigger_epoch, created_at)
VALUES ($1, $2, $3)
ON CONFLICT ON CONSTRAINT reminder_notification_crossing_key DO NOTHING
RETURNING ` + notificationColumns

const getNotificationByCrossing = `
SELECT ` + notificationColumns + `
FROM reminder_notification
WHERE reminder_id = $1 AND trigger_epoch = $2`

const getNotificationByID = `
SELECT ` + notificationColumns + `
FROM reminder_notification
WHERE id = $1`

const lockNotification = `
SELECT id FROM reminder_notification WHERE id = $1 FOR UPDATE`

const updateNotification = `
UPDATE reminder_notification SET
    dismissed_at = CASE WHEN $2::boolean THEN $3::timestamptz ELSE dismissed_at END,
    snoozed_until = CASE WHEN $4::boolean THEN $5::timestamptz ELSE snoozed_until END
WHERE id = $1
RETURNING ` + notificationColumns

type PgxNotificationRepository struct {
	db db.DBTX
}

func NewPgxNotificationRepository(dbtx db.DBTX) *PgxNotificationRepository {
	if dbtx == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxNotificationRepository{db: dbtx}
}

// CreateIfAbsent relies on the unique constraint of the crossing, so it is
// safe when several engines watch the same reminders.
func (r *PgxNotificationRepository) CreateIfAbsent(
	ctx context.Context,
	input notification.CreateIfAbsentInput,
) (n notification.Notification, created bool, err error) {
	row := r.db.QueryRow(
		ctx,
		insertNotificationIfAbsent,
		int64(input.ReminderID),
		int64(input.TriggerEpoch),
		input.CreatedAt,
	)
	n, err = scanNotification(row)
	if err == nil {
		return n, true, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == db.PG_FOREIGN_KEY_VIOLATION_ERR_CODE {
		return n, false, reminder.ErrReminderDoesNotExist
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return n, false, err
	}

	// The crossing is already recorded. This is a separate statement so that
	// a row committed by a concurrent insert is visible.
	n, err = scanNotification(
		r.db.QueryRow(ctx, getNotificationByCrossing, int64(input.ReminderID), int64(input.TriggerEpoch)),
	)
	return n, false, err
}

func (r *PgxNotificationRepository) GetByID(
	ctx context.Context,
	id notification.ID,
) (n notification.Notification, err error) {
	n, err = scanNotification(r.db.QueryRow(ctx, getNotificationByID, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return n, notification.ErrNotificationDoesNotExist
	}
	return n, err
}

func (r *PgxNotificationRepository) Lock(ctx context.Context, id notification.ID) error {
	// The method works only within a DB transaction
	var lockedID int64
	err := r.db.QueryRow(ctx, lockNotification, int64(id)).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.ErrNotificationDoesNotExist
	}
	return err
}

func (r *PgxNotificationRepository) Update(
	ctx context.Context,
	input notification.UpdateInput,
) (n notification.Notification, err error) {
	row := r.db.QueryRow(
		ctx,
		updateNotification,
		int64(input.ID),
		input.DoDismissedAtUpdate,
		db.EncodeOptionalTime(input.DismissedAt),
		input.DoSnoozedUntilUpdate,
		db.EncodeOptionalTime(input.SnoozedUntil),
	)
	n, err = scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return n, notification.ErrNotificationDoesNotExist
	}
	return n, err
}

func scanNotification(row pgx.Row) (n notification.Notification, err error) {
	var (
		id           int64
		reminderID   int64
		triggerEpoch int64
		dismissedAt  pgtype.Timestamptz
		snoozedUntil pgtype.Timestamptz
	)
	err = row.Scan(&id, &reminderID, &triggerEpoch, &n.CreatedAt, &dismissedAt, &snoozedUntil)
	if err != nil {
		return n, err
	}
	n.ID = notification.ID(id)
	n.ReminderID = reminder.ID(reminderID)
	n.TriggerEpoch = notification.TriggerEpoch(triggerEpoch)
	n.CreatedAt = n.CreatedAt.UTC()
	n.DismissedAt = db.DecodeOptionalTime(dismissedAt)
	n.SnoozedUntil = db.DecodeOptionalTime(snoozedUntil)
	return n, n.Validate()
}
