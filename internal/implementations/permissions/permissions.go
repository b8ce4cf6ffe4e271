package permissions

import (
	"context"
	"errors"
	"fmt"
	e "reminderengine/internal/core/domain/errors"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"

	"github.com/go-redis/redis/v9"
)

// Redis keeps the permission states granted by the owner's platform. A kind
// that has never been set is reported as prompt.
type Redis struct {
	redisClient *redis.Client
}

func NewRedis(redisClient *redis.Client) *Redis {
	if redisClient == nil {
		panic(e.NewNilArgumentError("redisClient"))
	}
	return &Redis{redisClient: redisClient}
}

func (r *Redis) Query(ctx context.Context, owner reminder.OwnerID, kind permission.Kind) (permission.State, error) {
	value, err := r.redisClient.HGet(ctx, key(owner), kind.String()).Result()
	if errors.Is(err, redis.Nil) {
		return permission.StatePrompt, nil
	}
	if err != nil {
		return permission.StatePrompt, e.NewGatewayError("query permission", err)
	}
	state, err := permission.ParseState(value)
	if err != nil {
		return permission.StatePrompt, fmt.Errorf("stored %s permission: %w", kind, err)
	}
	return state, nil
}

func (r *Redis) Update(
	ctx context.Context,
	owner reminder.OwnerID,
	kind permission.Kind,
	state permission.State,
) error {
	if kind == permission.KindUnknown {
		return permission.ErrParseKind
	}
	if err := r.redisClient.HSet(ctx, key(owner), kind.String(), state.String()).Err(); err != nil {
		return e.NewGatewayError("update permission", err)
	}
	return nil
}

func key(owner reminder.OwnerID) string {
	return fmt.Sprintf("permissions::%d", owner)
}
