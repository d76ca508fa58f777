// Package rabbitmq подключается к RabbitMQ, объявляет обменник и очередь
// напоминаний, публикует и потребляет JSON-сообщения.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
)

// Prefetch максимальное число неподтверждённых сообщений на канал.
const Prefetch = 10

// Topology обменник и очередь, которые нужно объявить.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// TopologyFrom собирает Topology из настроек брокера.
func TopologyFrom(cfg config.RabbitMQ) Topology {
	return Topology{Exchange: cfg.Exchange, Queue: cfg.Queue, RoutingKey: cfg.RoutingKey}
}

// Connect подключается к брокеру, повторяя попытку retries раз с паузой delay.
func Connect(ctx context.Context, connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	var (
		conn *amqp.Connection
		err  error
	)

	for range retries {
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: %w", op, err)
}

// SetupChannel открывает канал и объявляет direct-обменник, очередь и привязку.
func SetupChannel(conn *amqp.Connection, t Topology) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = ch.Qos(Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to set QoS: %w", op, err)
	}

	if err = ch.ExchangeDeclare(t.Exchange, "direct", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if t.Queue == "" {
		return ch, nil
	}

	if _, err = ch.QueueDeclare(t.Queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, t.Queue, err)
	}
	if err = ch.QueueBind(t.Queue, t.RoutingKey, t.Exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: failed to bind queue %s with routing key %s: %w",
			op, t.Queue, t.RoutingKey, err)
	}
	return ch, nil
}
