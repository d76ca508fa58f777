// Package create реализует HTTP-обработчик создания подписки.
//
// Handler декодирует JSON, проверяет формат полей и передаёт данные сервису
// вместе с идентификатором пользователя из токена. Владелец подписки всегда
// берётся из токена, а не из тела запроса.
package create

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

// Handler обрабатывает HTTP-запросы на создание подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания подписки.
type Service interface {
	Create(ctx context.Context, userID string, in models.SubscriptionInput) (*models.Subscription, error)
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
// @Summary Создать подписку
// @Description Создаёт подписку текущего пользователя. Период по умолчанию monthly.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param subscription body models.SubscriptionInput true "Данные подписки"
// @Success 201 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

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

	var in models.SubscriptionInput
	if err := request.DecodeJSON(r, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	sub, err := h.service.Create(r.Context(), principal.ID, in)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription created", slog.Int("id", sub.ID), slog.String("user_id", principal.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(sub))
}
