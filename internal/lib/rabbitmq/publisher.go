package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует сообщения в заданный обменник с фиксированным ключом.
type Publisher struct {
	ch         Channel
	exchange   string
	routingKey string
}

// NewPublisher создаёт Publisher.
func NewPublisher(ch Channel, t Topology) *Publisher {
	return &Publisher{ch: ch, exchange: t.Exchange, routingKey: t.RoutingKey}
}

// Publish кодирует message в JSON и отправляет его.
func (p *Publisher) Publish(message any) error {
	return PublishMessage(p.ch, p.exchange, p.routingKey, message)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch Channel, exchange string, routingKey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
