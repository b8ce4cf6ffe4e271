package permissions

import (
	"context"
	"os"
	"reminderengine/internal/core/domain/permission"
	"reminderengine/internal/core/domain/reminder"
	"testing"

	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/suite"
)

type testSuite struct {
	suite.Suite
	client      *redis.Client
	permissions *Redis
}

func (suite *testSuite) SetupSuite() {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		suite.T().Skip("TEST_REDIS_URL is not set")
	}
	opts, err := redis.ParseURL(url)
	suite.Require().Nil(err)
	suite.client = redis.NewClient(opts)
	suite.permissions = NewRedis(suite.client)
}

func (suite *testSuite) TearDownSuite() {
	if suite.client != nil {
		suite.client.Close()
	}
}

func (suite *testSuite) SetupTest() {
	suite.Require().Nil(suite.client.Del(context.Background(), key(1), key(2)).Err())
}

func TestRedisPermissions(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (suite *testSuite) TestUnsetKindIsPrompt() {
	state, err := suite.permissions.Query(context.Background(), reminder.OwnerID(1), permission.KindAudio)
	suite.Nil(err)
	suite.Equal(permission.StatePrompt, state)
}

func (suite *testSuite) TestUpdateIsScopedToOwnerAndKind() {
	ctx := context.Background()

	// Exercise ---
	err := suite.permissions.Update(ctx, reminder.OwnerID(1), permission.KindAudio, permission.StateGranted)
	suite.Require().Nil(err)

	// Verify ---
	state, err := suite.permissions.Query(ctx, reminder.OwnerID(1), permission.KindAudio)
	suite.Nil(err)
	suite.Equal(permission.StateGranted, state)

	state, err = suite.permissions.Query(ctx, reminder.OwnerID(1), permission.KindSystemNotification)
	suite.Nil(err)
	suite.Equal(permission.StatePrompt, state)

	state, err = suite.permissions.Query(ctx, reminder.OwnerID(2), permission.KindAudio)
	suite.Nil(err)
	suite.Equal(permission.StatePrompt, state)
}

func (suite *testSuite) TestUnknownKindIsRejected() {
	err := suite.permissions.Update(
		context.Background(), reminder.OwnerID(1), permission.KindUnknown, permission.StateGranted,
	)
	suite.ErrorIs(err, permission.ErrParseKind)
}
