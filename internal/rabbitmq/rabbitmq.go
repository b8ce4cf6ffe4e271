package rabbitmq

import (
	"context"
	"fmt"
	"reminderengine/internal/core/domain/logging"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ReconnectDelay is the pause between reconnection attempts.
var ReconnectDelay = 3 * time.Second

// Connection is an amqp.Connection that redials the broker whenever the
// connection is lost.
type Connection struct {
	*amqp.Connection
	log  logging.Logger
	lock sync.RWMutex
}

func Dial(url string, log logging.Logger) (*Connection, error) {
	if log == nil {
		return nil, fmt.Errorf("log argument must not be nil")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	connection := &Connection{Connection: conn, log: log}
	go connection.watch(url)
	return connection, nil
}

func (c *Connection) watch(url string) {
	ctx := context.Background()
	for {
		reason, ok := <-c.current().NotifyClose(make(chan *amqp.Error, 1))
		if !ok {
			c.log.Info(ctx, "RabbitMQ connection closed.")
			return
		}

		c.log.Warning(ctx, "RabbitMQ connection lost.", logging.Entry("reason", reason.Error()))
		for {
			time.Sleep(ReconnectDelay)

			conn, err := amqp.Dial(url)
			if err == nil {
				c.lock.Lock()
				c.Connection = conn
				c.lock.Unlock()
				c.log.Info(ctx, "RabbitMQ reconnect success.")
				break
			}
			c.log.Error(ctx, "RabbitMQ reconnect failed.", logging.Entry("err", err))
		}
	}
}

func (c *Connection) current() *amqp.Connection {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.Connection
}

// Channel opens a channel that is recreated after an unexpected close.
func (c *Connection) Channel() (*Channel, error) {
	ch, err := c.current().Channel()
	if err != nil {
		return nil, err
	}

	channel := &Channel{Channel: ch, log: c.log}

	go func() {
		ctx := context.Background()
		for {
			reason, ok := <-channel.current().NotifyClose(make(chan *amqp.Error, 1))
			if !ok || channel.IsClosed() {
				channel.Close() //nolint:errcheck
				return
			}

			c.log.Warning(ctx, "RabbitMQ channel closed.", logging.Entry("reason", reason.Error()))
			for {
				time.Sleep(ReconnectDelay)

				ch, err := c.current().Channel()
				if err == nil {
					c.log.Info(ctx, "RabbitMQ channel recreated.")
					channel.lock.Lock()
					channel.Channel = ch
					channel.lock.Unlock()
					break
				}
				c.log.Error(ctx, "RabbitMQ channel recreate failed.", logging.Entry("err", err))
			}
		}
	}()

	return channel, nil
}

type Channel struct {
	*amqp.Channel
	closed atomic.Bool
	log    logging.Logger
	lock   sync.RWMutex
}

func (ch *Channel) current() *amqp.Channel {
	ch.lock.RLock()
	defer ch.lock.RUnlock()
	return ch.Channel
}

// IsClosed reports whether Close was called.
func (ch *Channel) IsClosed() bool {
	return ch.closed.Load()
}

func (ch *Channel) Close() error {
	if !ch.closed.CompareAndSwap(false, true) {
		return amqp.ErrClosed
	}
	return ch.current().Close()
}

func (ch *Channel) PublishWithContext(
	ctx context.Context,
	exchange, key string,
	mandatory, immediate bool,
	msg amqp.Publishing,
) error {
	return ch.current().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg)
}

// Consume keeps consuming from queue across channel recreation. The returned
// channel is closed once ctx is done or the channel is closed with Close.
func (ch *Channel) Consume(ctx context.Context, queue string) <-chan amqp.Delivery {
	deliveries := make(chan amqp.Delivery)

	go func() {
		defer close(deliveries)
		for {
			d, err := ch.current().Consume(queue, "", false, false, false, false, nil)
			if err != nil {
				ch.log.Error(ctx, "RabbitMQ consume failed.", logging.Entry("queue", queue), logging.Entry("err", err))
			} else {
				for msg := range d {
					select {
					case deliveries <- msg:
					case <-ctx.Done():
						return
					}
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(ReconnectDelay):
			}

			if ch.IsClosed() {
				ch.log.Info(ctx, "RabbitMQ channel is closed, stop consuming.", logging.Entry("queue", queue))
				return
			}
		}
	}()

	return deliveries
}

// Topology names the exchange and queues the engine talks to.
type Topology struct {
	Exchange                   string
	SystemNotificationQueue    string
	SystemNotificationKey      string
	NotificationActivatedQueue string
	NotificationActivatedKey   string
}

// Declare creates the exchange and both queues if they are missing.
func (t Topology) Declare(ch *Channel) error {
	c := ch.current()
	if err := c.ExchangeDeclare(t.Exchange, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", t.Exchange, err)
	}
	bindings := []struct{ queue, key string }{
		{t.SystemNotificationQueue, t.SystemNotificationKey},
		{t.NotificationActivatedQueue, t.NotificationActivatedKey},
	}
	for _, b := range bindings {
		if _, err := c.QueueDeclare(b.queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := c.QueueBind(b.queue, b.key, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}
	return nil
}
