// Package sender собирает процесс отправки писем-напоминаний из очереди.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/subscription-tracker/internal/services/sender"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	db            *repository.Storage
	queue         string
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.TopologyFrom(cfg.RabbitMQ))
	if err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.NewSenderService(transport, db, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		db:            db,
		queue:         cfg.RabbitMQ.Queue,
		senderService: senderService,
		logger:        logger,
	}, nil
}

// Run потребляет очередь напоминаний до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.Consume(ctx, a.ch, a.queue, a.logger, a.senderService.HandleReminder)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", a.queue), sl.Err(err))
	}

	a.logger.Info("sender service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}

	return err
}
