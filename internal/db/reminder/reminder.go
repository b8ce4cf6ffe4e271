package reminder

import (
	"context"
	"errors"
	c "reminderengine/internal/core/domain/common"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/reminder"
	"reminderengine/internal/db"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const reminderColumns = "id, owner_id, message, trigger_at, every, active, created_at"

const createReminder = `
INSERT INTO reminder (owner_id, message, trigger_at, every, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + reminderColumns

const listActiveReminders = `
SELECT ` + reminderColumns + `
FROM reminder
WHERE owner_id = $1 AND active
ORDER BY trigger_at, id`

const getReminderByID = `
SELECT ` + reminderColumns + `
FROM reminder
WHERE id = $1`

const lockReminder = `
SELECT id FROM reminder WHERE id = $1 FOR UPDATE`

const updateReminder = `
UPDATE reminder SET
    trigger_at = CASE WHEN $2::boolean THEN $3::timestamptz ELSE trigger_at END,
    active = CASE WHEN $4::boolean THEN $5::boolean ELSE active END
WHERE id = $1
RETURNING ` + reminderColumns

type CreateInput struct {
	Owner     reminder.OwnerID
	Message   string
	TriggerAt time.Time
	Every     c.Optional[reminder.Every]
	Active    bool
	CreatedAt time.Time
}

type PgxReminderRepository struct {
	db db.DBTX
}

func NewPgxReminderRepository(dbtx db.DBTX) *PgxReminderRepository {
	if dbtx == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxReminderRepository{db: dbtx}
}

// Create is used by provisioning and tests, the engine never creates reminders.
func (r *PgxReminderRepository) Create(ctx context.Context, input CreateInput) (rem reminder.Reminder, err error) {
	row := r.db.QueryRow(
		ctx,
		createReminder,
		int64(input.Owner),
		input.Message,
		input.TriggerAt,
		encodeEvery(input.Every),
		input.Active,
		input.CreatedAt,
	)
	return scanReminder(row)
}

func (r *PgxReminderRepository) ListActive(
	ctx context.Context,
	owner reminder.OwnerID,
) (reminders []reminder.Reminder, err error) {
	rows, err := r.db.Query(ctx, listActiveReminders, int64(owner))
	if err != nil {
		return reminders, err
	}
	defer rows.Close()

	reminders = make([]reminder.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return reminders, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

func (r *PgxReminderRepository) GetByID(ctx context.Context, id reminder.ID) (rem reminder.Reminder, err error) {
	rem, err = scanReminder(r.db.QueryRow(ctx, getReminderByID, int64(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return rem, reminder.ErrReminderDoesNotExist
	}
	return rem, err
}

func (r *PgxReminderRepository) Lock(ctx context.Context, id reminder.ID) error {
	// The method works only within a DB transaction
	var lockedID int64
	err := r.db.QueryRow(ctx, lockReminder, int64(id)).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return reminder.ErrReminderDoesNotExist
	}
	return err
}

func (r *PgxReminderRepository) Update(
	ctx context.Context,
	input reminder.UpdateInput,
) (rem reminder.Reminder, err error) {
	row := r.db.QueryRow(
		ctx,
		updateReminder,
		int64(input.ID),
		input.DoTriggerAtUpdate,
		input.TriggerAt,
		input.DoActiveUpdate,
		input.Active,
	)
	rem, err = scanReminder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return rem, reminder.ErrReminderDoesNotExist
	}
	return rem, err
}

func scanReminder(row pgx.Row) (rem reminder.Reminder, err error) {
	var (
		id      int64
		ownerID int64
		every   pgtype.Text
	)
	err = row.Scan(&id, &ownerID, &rem.Message, &rem.TriggerAt, &every, &rem.Active, &rem.CreatedAt)
	if err != nil {
		return rem, err
	}
	rem.ID = reminder.ID(id)
	rem.Owner = reminder.OwnerID(ownerID)
	rem.TriggerAt = rem.TriggerAt.UTC()
	rem.CreatedAt = rem.CreatedAt.UTC()
	if every.Status == pgtype.Present {
		value, err := reminder.ParseEvery(every.String)
		if err != nil {
			return rem, err
		}
		rem.Every = c.Some(value)
	}
	return rem, rem.Validate()
}

func encodeEvery(every c.Optional[reminder.Every]) pgtype.Text {
	if !every.IsPresent {
		return pgtype.Text{Status: pgtype.Null}
	}
	return pgtype.Text{String: every.Value.String(), Status: pgtype.Present}
}
