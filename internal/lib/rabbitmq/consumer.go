package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
)

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// Consume читает очередь queueName и обрабатывает не более Prefetch
// сообщений одновременно. Возвращается после отмены ctx или закрытия канала,
// дождавшись обработчиков, которые уже запущены.
func Consume(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.Consume"
	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	Dispatch(ctx, deliveries, log, handler)
	return nil
}

// Dispatch раздаёт доставки обработчикам.
func Dispatch(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler Handler) {
	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, Prefetch)
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if err := d.Nack(false, true); err != nil {
					log.Error("failed to nack message", sl.Err(err))
				}
				return
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := handler(ctx, d.Body); err != nil {
					log.Warn("message handling failed, requeueing", sl.Err(err))
					if nackErr := d.Nack(false, true); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		}
	}
}
