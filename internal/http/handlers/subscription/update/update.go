// Package update реализует HTTP-обработчик частичного обновления подписки.
//
// Переданные поля заменяют текущие значения, отсутствующие поля не меняются.
package update

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Handler обрабатывает HTTP-запросы на обновление подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс обновления подписки.
type Service interface {
	Update(ctx context.Context, userID string, id int, patch models.SubscriptionPatch) (*models.Subscription, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить подписку
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Param subscription body models.SubscriptionPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 404 {object} response.ErrorResponse "Подписка или категория не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /subscriptions/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.update"

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

	var patch models.SubscriptionPatch
	if err = request.DecodeJSON(r, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err = h.validate.Struct(patch); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	sub, err := h.service.Update(r.Context(), principal.ID, id, patch)
	if err != nil {
		log.Info("failed to update subscription", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription updated", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(sub))
}
