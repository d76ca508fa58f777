// Package analytics реализует HTTP-обработчик сводки расходов пользователя:
// месячный эквивалент, разбивка по категориям, ближайшие и просроченные продления.
package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс построения сводки.
type Service interface {
	Analytics(ctx context.Context, userID string) (*models.Analytics, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка расходов
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.Analytics}
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions/analytics/summary [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.analytics"

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

	res, err := h.service.Analytics(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to build analytics", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("analytics built", slog.String("user_id", principal.ID), slog.String("total", res.TotalMonthlyCost.String()))
	render.JSON(w, r, response.OKWithData(res))
}
