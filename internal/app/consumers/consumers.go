package consumers

import (
	"context"
	"reminderengine/internal/app/deps"
	"reminderengine/internal/app/services"
	dl "reminderengine/internal/core/domain/logging"
	notificationactivated "reminderengine/internal/rabbitmq/consumers/notification_activated"
)

func initNotificationActivatedConsumer(deps *deps.Deps, services *services.Services) func() {
	rabbitmqChannel, err := deps.Rabbitmq.Channel()
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not create RabbitMQ channel.", dl.Entry("err", err))
		panic(err)
	}

	queue := deps.Config.RabbitmqNotificationActivatedQueue
	ctx, cancel := context.WithCancel(context.Background())
	done := notificationactivated.New(
		deps.Logger,
		rabbitmqChannel,
		queue,
		deps.Owner,
		services.ActivateNotification,
	).Consume(ctx)

	deps.Logger.Info(context.Background(), "Consumer has started.", dl.Entry("queue", queue))
	return func() {
		cancel()
		rabbitmqChannel.Close()
		<-done
		deps.Logger.Info(context.Background(), "Consumer has stopped.", dl.Entry("queue", queue))
	}
}

func InitConsumers(deps *deps.Deps, services *services.Services) func() {
	shutdownNotificationActivatedConsumer := initNotificationActivatedConsumer(deps, services)

	return func() {
		shutdownNotificationActivatedConsumer()
	}
}
