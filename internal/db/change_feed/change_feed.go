package changefeed

import (
	"context"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/reminder"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Channel is the Postgres NOTIFY channel fed by the reminder table trigger.
const Channel = "reminder_changes"

type payload struct {
	Operation  string `json:"operation"`
	ReminderID int64  `json:"reminder_id"`
	OwnerID    int64  `json:"owner_id"`
}

func decodePayload(raw string) (event reminder.ChangeEvent, err error) {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return event, err
	}
	operation, err := reminder.ParseChangeOperation(p.Operation)
	if err != nil {
		return event, err
	}
	return reminder.ChangeEvent{
		Operation:  operation,
		ReminderID: reminder.ID(p.ReminderID),
		Owner:      reminder.OwnerID(p.OwnerID),
	}, nil
}

// PgxChangeFeed listens to reminder changes on a dedicated connection taken
// from the pool for the lifetime of each subscription.
type PgxChangeFeed struct {
	pool   *pgxpool.Pool
	log    logging.Logger
	buffer int
}

func NewPgxChangeFeed(pool *pgxpool.Pool, log logging.Logger) *PgxChangeFeed {
	if pool == nil {
		panic(e.NewNilArgumentError("pool"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	return &PgxChangeFeed{pool: pool, log: log, buffer: 64}
}

func (f *PgxChangeFeed) Subscribe(ctx context.Context, owner reminder.OwnerID) (<-chan reminder.ChangeEvent, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		conn.Release()
		return nil, err
	}

	// The connection is in LISTEN mode, so it is closed rather than given back
	// to the pool.
	listener := conn.Hijack()
	events := make(chan reminder.ChangeEvent, f.buffer)
	go func() {
		defer close(events)
		defer listener.Close(context.Background())

		for {
			n, err := listener.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logging.Error(ctx, f.log, e.NewGatewayError("wait for reminder change", err))
				}
				return
			}
			event, err := decodePayload(n.Payload)
			if err != nil {
				f.log.Warning(
					ctx,
					"Invalid reminder change payload.",
					logging.Entry("payload", n.Payload),
					logging.Entry("err", err),
				)
				continue
			}
			if event.Owner != owner {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
