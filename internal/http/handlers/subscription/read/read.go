// Package read реализует HTTP-обработчик получения подписки по ID.
//
// Handler извлекает ID из URL, вызывает бизнес-логику с идентификатором
// пользователя из токена и возвращает подписку в JSON. Чужие и удалённые
// подписки неотличимы от несуществующих.
package read

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

// Handler обрабатывает запросы на получение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения подписки.
type Service interface {
	Get(ctx context.Context, userID string, id int) (*models.Subscription, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить подписку
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /subscriptions/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal missing in context")
		response.RenderStatus(w, r, http.StatusUnauthorized, middlewarectx.MsgMissingToken)
		return
	}

	id, err := request.IntParam(r, "id")
	if err != nil {
		log.Info("failed to decode id from url", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid subscription id")
		return
	}

	sub, err := h.service.Get(r.Context(), principal.ID, id)
	if err != nil {
		log.Info("failed to read subscription", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.OKWithData(sub))
}
