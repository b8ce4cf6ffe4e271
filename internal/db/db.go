package db

import (
	"context"
	c "reminderengine/internal/core/domain/common"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const (
	PG_FOREIGN_KEY_VIOLATION_ERR_CODE = "23503"
	PG_UNIQUE_CONSTRAINT_ERR_CODE     = "23505"
)

// DBTX is satisfied by a pool, a single connection and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func EncodeOptionalTime(value c.Optional[time.Time]) pgtype.Timestamptz {
	if !value.IsPresent {
		return pgtype.Timestamptz{Status: pgtype.Null}
	}
	return pgtype.Timestamptz{Time: value.Value, Status: pgtype.Present}
}

func DecodeOptionalTime(value pgtype.Timestamptz) c.Optional[time.Time] {
	if value.Status != pgtype.Present {
		return c.Optional[time.Time]{}
	}
	return c.Some(value.Time.UTC())
}
