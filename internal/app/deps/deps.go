package deps

import (
	"context"
	"fmt"
	"reminderengine/internal/config"
	"reminderengine/internal/core/domain/delivery"
	dl "reminderengine/internal/core/domain/logging"
	"reminderengine/internal/core/domain/metrics"
	"reminderengine/internal/core/domain/notification"
	"reminderengine/internal/core/domain/permission"
	drl "reminderengine/internal/core/domain/rate_limiter"
	"reminderengine/internal/core/domain/reminder"
	duow "reminderengine/internal/core/domain/unit_of_work"
	changefeed "reminderengine/internal/db/change_feed"
	dbnotification "reminderengine/internal/db/notification"
	dbreminder "reminderengine/internal/db/reminder"
	uow "reminderengine/internal/db/unit_of_work"
	audioplayer "reminderengine/internal/implementations/audio_player"
	"reminderengine/internal/implementations/email"
	"reminderengine/internal/implementations/logging"
	"reminderengine/internal/implementations/permissions"
	prometheusmetrics "reminderengine/internal/implementations/prometheus_metrics"
	"reminderengine/internal/implementations/prompt"
	ratelimiter "reminderengine/internal/implementations/rate_limiter"
	"reminderengine/internal/rabbitmq"
	systemnotification "reminderengine/internal/rabbitmq/publishers/system_notification"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/r3labs/sse/v2"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB              *pgxpool.Pool
	Redis           *redis.Client
	Rabbitmq        *rabbitmq.Connection
	RabbitmqChannel *rabbitmq.Channel
	SseServer       *sse.Server
	MetricsRegistry *prometheus.Registry

	Now   func() time.Time
	Owner reminder.OwnerID

	UnitOfWork             duow.UnitOfWork
	ReminderRepository     reminder.Repository
	NotificationRepository notification.Repository
	ChangeFeed             reminder.ChangeFeed

	RateLimiter drl.RateLimiter
	Permissions permission.Service
	Metrics     metrics.Recorder

	Bus           *delivery.Bus
	PromptChannel delivery.Channel
	Channels      []delivery.Channel
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()

	closeLogger := deps.initLogger()
	flushSentry := deps.initSentry()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()
	closeRabbitmqConn := deps.initRabbitmqConnection()
	closeRabbitmqChannel := deps.initRabbitmqChannel()
	closeSseServer := deps.initSseServer()
	deps.initMetrics()

	deps.Now = func() time.Time { return time.Now().UTC() }
	deps.Owner = reminder.OwnerID(deps.Config.OwnerID)

	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.ReminderRepository = dbreminder.NewPgxReminderRepository(deps.DB)
	deps.NotificationRepository = dbnotification.NewPgxNotificationRepository(deps.DB)
	deps.ChangeFeed = changefeed.NewPgxChangeFeed(deps.DB, deps.Logger)

	deps.RateLimiter = ratelimiter.NewRedis(deps.Redis, deps.Logger, deps.Now)
	deps.Permissions = permissions.NewRedis(deps.Redis)

	deps.Bus = delivery.NewBus()
	deps.initChannels()

	return deps, func() {
		closeFuncs := []func(){
			closeSseServer,
			closeRabbitmqChannel,
			closeRabbitmqConn,
			closeRedisClient,
			closePgxPool,
			flushSentry,
		}

		var wg sync.WaitGroup
		wg.Add(len(closeFuncs))
		for _, closeFunc := range closeFuncs {
			closeFunc := closeFunc
			go func() {
				closeFunc()
				wg.Done()
			}()
		}

		wg.Wait()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger(deps.Config.Debug)
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}

func (deps *Deps) initRabbitmqConnection() func() {
	rabbitmqConnection, err := rabbitmq.Dial(deps.Config.RabbitmqURL, deps.Logger)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to RabbitMQ.", dl.Entry("err", err))
		panic("could not connect to RabbitMQ")
	}
	deps.Rabbitmq = rabbitmqConnection
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ connection.")
		rabbitmqConnection.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ connection shut down.")
	}
}

func (deps *Deps) RabbitmqTopology() rabbitmq.Topology {
	return rabbitmq.Topology{
		Exchange:                   deps.Config.RabbitmqExchange,
		SystemNotificationQueue:    deps.Config.RabbitmqSystemNotificationQueue,
		SystemNotificationKey:      deps.Config.RabbitmqSystemNotificationQueue,
		NotificationActivatedQueue: deps.Config.RabbitmqNotificationActivatedQueue,
		NotificationActivatedKey:   deps.Config.RabbitmqNotificationActivatedQueue,
	}
}

func (deps *Deps) initRabbitmqChannel() func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}
	if err := deps.RabbitmqTopology().Declare(rabbitmqChannel); err != nil {
		deps.Logger.Error(context.Background(), "Could not declare RabbitMQ topology.", dl.Entry("err", err))
		panic(err)
	}
	deps.RabbitmqChannel = rabbitmqChannel
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down RabbitMQ channel.")
		rabbitmqChannel.Close()
		deps.Logger.Info(context.Background(), "RabbitMQ channel shut down.")
	}
}

func (deps *Deps) initSseServer() func() {
	deps.SseServer = sse.New()
	deps.SseServer.AutoStream = true
	deps.SseServer.AutoReplay = false
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down SSE server.")
		deps.SseServer.Close()
		deps.Logger.Info(context.Background(), "SSE server shut down.")
	}
}

func (deps *Deps) initMetrics() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.MetricsRegistry = registry
	deps.Metrics = prometheusmetrics.New(registry)
}

// initChannels builds every configured delivery channel. Channels switched
// off in the config are still registered so they can be enabled at runtime,
// except e-mail which needs AWS credentials.
func (deps *Deps) initChannels() {
	deps.PromptChannel = prompt.NewSSE(deps.SseServer)
	deps.Channels = []delivery.Channel{
		audioplayer.New(deps.Config.AudioPlayerCommand, deps.Config.AudioPlayerArgs, deps.Config.AudioSoundFile),
		deps.PromptChannel,
		systemnotification.NewRabbitMQ(
			deps.Logger,
			deps.RabbitmqChannel,
			deps.Config.RabbitmqExchange,
			deps.RabbitmqTopology().SystemNotificationKey,
		),
	}
	if deps.Config.EmailEnabled {
		deps.initAwsConfig()
		deps.Channels = append(deps.Channels, email.NewChannel(
			deps.AwsConfig,
			deps.Logger,
			deps.Config.AwsEmailSender,
			deps.Config.AwsEmailRecipient,
			deps.Config.AwsEmailReminderTemplate,
		))
	}
}

// ChannelToggles returns the configured on/off state of every channel.
func (deps *Deps) ChannelToggles() map[delivery.ChannelName]bool {
	return map[delivery.ChannelName]bool{
		delivery.ChannelAudio:  deps.Config.AudioEnabled,
		delivery.ChannelPrompt: deps.Config.PromptEnabled,
		delivery.ChannelSystem: deps.Config.SystemEnabled,
		delivery.ChannelEmail:  deps.Config.EmailEnabled,
	}
}

func (deps *Deps) initSentry() func() {
	if deps.Config.SentryDsn != nil {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              deps.Config.SentryDsn.String(),
			TracesSampleRate: 0.01,
		})
		if err != nil {
			panic(fmt.Sprintf("could not init Sentry: %v\n", err))
		}
		deps.Logger = logging.NewSentryLogger(deps.Logger, sentry.CurrentHub())
		deps.Logger.Info(context.Background(), "Sentry has been successfully initialized.")
		return func() {
			ok := sentry.Flush(5 * time.Second)
			deps.Logger.Info(context.Background(), "Sentry events flushed.", dl.Entry("ok", ok))
		}
	}

	deps.Logger.Info(context.Background(), "Sentry is disabled.")
	return func() {}
}
