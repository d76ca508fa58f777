// Package tracker собирает HTTP API трекера подписок: хранилище, кеш,
// сервисы и маршруты.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	customjwt "github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	adminservice "github.com/magabrotheeeer/subscription-tracker/internal/services/admin"
	authservice "github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
	categoryservice "github.com/magabrotheeeer/subscription-tracker/internal/services/category"
	notificationservice "github.com/magabrotheeeer/subscription-tracker/internal/services/notification"
	subservice "github.com/magabrotheeeer/subscription-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключает хранилище и кеш, применяет миграции, создаёт администратора
// по умолчанию и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.tracker.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hasher := password.NewHasher(cfg.Password.BcryptCost, cfg.Password.MaxConcurrent)
	jwtMaker := customjwt.NewJWTMaker(cfg.JWTToken.SecretKey, cfg.JWTToken.TokenTTL)

	authService := authservice.NewAuthService(db, db, hasher, jwtMaker, logger)
	if cfg.Admin.Email != "" {
		if _, err = authService.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
			db.Close()
			cacheRedis.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	services := Services{
		Auth: authService,
		Subscriptions: subservice.NewSubscriptionService(db, cacheRedis, subservice.Options{
			AnalyticsTTL:    cfg.Cache.AnalyticsTTL,
			SubscriptionTTL: cfg.Cache.SubscriptionTTL,
		}, logger),
		Categories:    categoryservice.NewCategoryService(db, logger),
		Notifications: notificationservice.NewNotificationService(db, logger),
		Admin:         adminservice.NewAdminService(db, logger),
		Health: map[string]health.Pinger{
			"postgres": db,
			"redis":    cacheRedis,
		},
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, services,
		middlewarectx.NewMetrics(),
		middlewarectx.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		runErr = a.server.Shutdown(shutdownCtx)
	case runErr = <-errCh:
	}

	a.closeResources()
	return runErr
}

func (a *App) closeResources() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
