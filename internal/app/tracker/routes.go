package tracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/admin"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/adminlogin"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/category"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/notification"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/analytics"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"

	// регистрирует спецификацию для /docs
	_ "github.com/magabrotheeeer/subscription-tracker/docs"
)

// AuthService регистрация, вход и проверка токенов.
type AuthService interface {
	register.Service
	login.Service
	adminlogin.Service
	middlewarectx.TokenValidator
}

// SubscriptionService операции над подписками пользователя.
type SubscriptionService interface {
	create.Service
	read.Service
	list.Service
	update.Service
	remove.Service
	analytics.Service
}

// CategoryService операции над категориями для пользователя и администратора.
type CategoryService interface {
	category.UserService
	category.AdminService
}

// Services зависимости HTTP-слоя.
type Services struct {
	Auth          AuthService
	Subscriptions SubscriptionService
	Categories    CategoryService
	Notifications notification.Service
	Admin         admin.Service
	Health        map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, metrics *middlewarectx.Metrics, limiter *middlewarectx.Limiter) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger, svc.Health).ServeHTTP)

		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/admin/login", adminlogin.New(logger, svc.Auth).ServeHTTP)
		})

		// Пользователь
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireKind(svc.Auth, models.KindUser, metrics, logger))

			r.Get("/subscriptions", list.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions", create.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/analytics/summary", analytics.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, svc.Subscriptions).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, svc.Subscriptions).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, svc.Subscriptions).ServeHTTP)

			r.Get("/categories", category.NewList(logger, svc.Categories).ServeHTTP)
			r.Get("/categories/{id}", category.NewGet(logger, svc.Categories).ServeHTTP)

			notifications := notification.New(logger, svc.Notifications)
			r.Get("/notifications", notifications.List)
			r.Post("/notifications", notifications.Create)
			r.Get("/notifications/unread-count", notifications.UnreadCount)
			r.Put("/notifications/read-all", notifications.MarkAllRead)
			r.Put("/notifications/{id}/read", notifications.MarkRead)
		})

		// Администратор
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.RequireKind(svc.Auth, models.KindAdmin, metrics, logger))

			users := admin.New(logger, svc.Admin)
			r.Get("/stats", users.Stats)
			r.Get("/users", users.ListUsers)
			r.Get("/users/{id}", users.UserDetails)
			r.Put("/users/{id}/toggle-status", users.ToggleUserStatus)

			categories := category.NewAdmin(logger, svc.Categories)
			r.Get("/categories", categories.List)
			r.Post("/categories", categories.Create)
			r.Put("/categories/{id}", categories.Update)
			r.Put("/categories/{id}/toggle-status", categories.ToggleStatus)
		})
	})

	r.Handle("/metrics", metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
