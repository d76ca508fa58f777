// Package admin содержит HTTP-обработчики панели администратора:
// системная статистика и управление пользователями.
package admin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает бизнес-логику администратора.
type Service interface {
	Stats(ctx context.Context) (*models.SystemStats, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	UserDetails(ctx context.Context, id string) (*models.UserDetails, error)
	ToggleUserStatus(ctx context.Context, id string) (bool, error)
}

// Handlers набор обработчиков /admin.
type Handlers struct {
	log     *slog.Logger
	service Service
}

// New создает Handlers.
func New(log *slog.Logger, service Service) *Handlers {
	return &Handlers{log: log, service: service}
}

func (h *Handlers) logger(op string, r *http.Request) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Stats godoc
// @Summary Системная статистика
// @Description Число активных пользователей и подписок, месячная выручка, среднее на пользователя и популярность категорий.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SystemStats}
// @Failure 401 {object} response.ErrorResponse "Требуется токен администратора"
// @Router /admin/stats [get]
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	log := h.logger("handlers.admin.Stats", r)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to build stats", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(stats))
}

// ListUsers godoc
// @Summary Пользователи
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.UserSummary}
// @Router /admin/users [get]
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	log := h.logger("handlers.admin.ListUsers", r)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}
	render.JSON(w, r, response.OKWithData(users))
}

// UserDetails godoc
// @Summary Пользователь с подписками
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=models.UserDetails}
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id} [get]
func (h *Handlers) UserDetails(w http.ResponseWriter, r *http.Request) {
	log := h.logger("handlers.admin.UserDetails", r)
	id := chi.URLParam(r, "id")

	details, err := h.service.UserDetails(r.Context(), id)
	if err != nil {
		log.Info("failed to get user", slog.String("user_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(details))
}

// ToggleUserStatus godoc
// @Summary Включить или отключить пользователя
// @Description Отключённый пользователь не может войти. Уже выданные токены действуют до истечения.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id}/toggle-status [put]
func (h *Handlers) ToggleUserStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logger("handlers.admin.ToggleUserStatus", r)
	id := chi.URLParam(r, "id")

	active, err := h.service.ToggleUserStatus(r.Context(), id)
	if err != nil {
		log.Info("failed to toggle user", slog.String("user_id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user status toggled", slog.String("user_id", id), slog.Bool("is_active", active))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":        id,
		"is_active": active,
	}))
}
