// Package category содержит HTTP-обработчики категорий: чтение для пользователей
// со статистикой по их подпискам и управление справочником для администратора.
package category

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const msgInvalidID = "invalid category id"

func requestLogger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// UserService операции категорий, доступные пользователю.
type UserService interface {
	ListForUser(ctx context.Context, userID string) ([]models.CategoryWithStats, error)
	GetForUser(ctx context.Context, userID string, id int) (*models.CategoryDetails, error)
}

// ListHandler возвращает активные категории со статистикой пользователя.
type ListHandler struct {
	log     *slog.Logger
	service UserService
}

// NewList создает ListHandler.
func NewList(log *slog.Logger, service UserService) *ListHandler {
	return &ListHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Категории пользователя
// @Description Активные категории с числом и месячной стоимостью подписок текущего пользователя.
// @Tags Categories
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.CategoryWithStats}
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Router /categories [get]
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.list", r)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, middlewarectx.MsgMissingToken)
		return
	}

	cats, err := h.service.ListForUser(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(cats))
}

// GetHandler возвращает категорию и подписки пользователя в ней.
type GetHandler struct {
	log     *slog.Logger
	service UserService
}

// NewGet создает GetHandler.
func NewGet(log *slog.Logger, service UserService) *GetHandler {
	return &GetHandler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Категория с подписками
// @Tags Categories
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Success 200 {object} response.Response{data=models.CategoryDetails}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Категория не найдена или отключена"
// @Router /categories/{id} [get]
func (h *GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.get", r)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		response.RenderStatus(w, r, http.StatusUnauthorized, middlewarectx.MsgMissingToken)
		return
	}
	id, err := request.IntParam(r, "id")
	if err != nil {
		response.RenderStatus(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	details, err := h.service.GetForUser(r.Context(), principal.ID, id)
	if err != nil {
		log.Info("failed to get category", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(details))
}
