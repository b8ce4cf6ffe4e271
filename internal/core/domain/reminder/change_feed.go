package reminder

import (
	"context"
	"errors"
)

var ErrParseChangeOperation = errors.New("invalid change operation")

type ChangeOperation struct {
	v string
}

func (o ChangeOperation) String() string {
	return o.v
}

var (
	ChangeUnknown = ChangeOperation{}
	ChangeInsert  = ChangeOperation{v: "insert"}
	ChangeUpdate  = ChangeOperation{v: "update"}
	ChangeDelete  = ChangeOperation{v: "delete"}
)

func ParseChangeOperation(value string) (ChangeOperation, error) {
	switch value {
	case "insert", "INSERT":
		return ChangeInsert, nil
	case "update", "UPDATE":
		return ChangeUpdate, nil
	case "delete", "DELETE":
		return ChangeDelete, nil
	default:
		return ChangeUnknown, ErrParseChangeOperation
	}
}

type ChangeEvent struct {
	Operation  ChangeOperation
	ReminderID ID
	Owner      OwnerID
}

// ChangeFeed pushes insert/update/delete events of the owner's reminders.
// The returned channel is closed once ctx is done or the feed is lost.
type ChangeFeed interface {
	Subscribe(ctx context.Context, owner OwnerID) (<-chan ChangeEvent, error)
}
