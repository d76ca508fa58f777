// Package scheduler собирает процесс планировщика напоминаний о продлении.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/subscription-tracker/internal/services/scheduler"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App представляет приложение планировщика.
type App struct {
	schedulerService *schedulerservice.SchedulerService
	db               *repository.Storage
	conn             *amqp.Connection
	ch               *amqp.Channel
	logger           *slog.Logger
}

// New дожидается схемы БД, подключается к RabbitMQ и объявляет очередь напоминаний.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect storage: %w", op, err)
	}
	if err = repository.WaitReady(ctx, db, dbReadyAttempts, dbReadyDelay); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to connect RabbitMQ: %w", op, err)
	}
	logger.Info("connected to RabbitMQ")

	topology := rabbitmq.TopologyFrom(cfg.RabbitMQ)
	ch, err := rabbitmq.SetupChannel(conn, topology)
	if err != nil {
		closeResources(nil, conn, db, logger)
		return nil, fmt.Errorf("%s: failed to setup RabbitMQ channel: %w", op, err)
	}

	schedulerService := schedulerservice.NewSchedulerService(db, rabbitmq.NewPublisher(ch, topology),
		cfg.Scheduler.Interval, cfg.Scheduler.ReminderDays, logger)

	return &App{
		schedulerService: schedulerService,
		db:               db,
		conn:             conn,
		ch:               ch,
		logger:           logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, db *repository.Storage, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("failed to close storage", sl.Err(err))
		}
	}
}

// Run выполняет проходы планировщика до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.schedulerService.Run(ctx)

	a.logger.Info("shutting down scheduler service")
	closeResources(a.ch, a.conn, a.db, a.logger)
	return nil
}
