package permission

import (
	"context"
	"errors"
	"reminderengine/internal/core/domain/reminder"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrParseKind        = errors.New("invalid permission kind")
	ErrParseState       = errors.New("invalid permission state")
)

type Kind struct {
	v string
}

func (k Kind) String() string {
	return k.v
}

var (
	KindUnknown            = Kind{}
	KindAudio              = Kind{v: "audio"}
	KindSystemNotification = Kind{v: "system_notification"}
)

func ParseKind(value string) (Kind, error) {
	switch value {
	case KindAudio.v:
		return KindAudio, nil
	case KindSystemNotification.v:
		return KindSystemNotification, nil
	default:
		return KindUnknown, ErrParseKind
	}
}

type State struct {
	v string
}

func (s State) String() string {
	return s.v
}

var (
	StatePrompt  = State{v: "prompt"}
	StateGranted = State{v: "granted"}
	StateDenied  = State{v: "denied"}
)

func ParseState(value string) (State, error) {
	switch value {
	case StatePrompt.v:
		return StatePrompt, nil
	case StateGranted.v:
		return StateGranted, nil
	case StateDenied.v:
		return StateDenied, nil
	default:
		return StatePrompt, ErrParseState
	}
}

// Service reports the platform permission state. Anything other than granted
// means the corresponding channel must be skipped.
type Service interface {
	Query(ctx context.Context, owner reminder.OwnerID, kind Kind) (State, error)
	Update(ctx context.Context, owner reminder.OwnerID, kind Kind, state State) error
}
