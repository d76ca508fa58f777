// Package list реализует HTTP-обработчик списка подписок пользователя.
package list

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

// Service описывает интерфейс получения активных подписок пользователя.
type Service interface {
	List(ctx context.Context, userID string) ([]models.Subscription, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список подписок
// @Description Активные подписки текущего пользователя по возрастанию даты продления.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Subscription}
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

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

	subs, err := h.service.List(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if subs == nil {
		subs = []models.Subscription{}
	}

	log.Debug("subscriptions listed", slog.Int("count", len(subs)))
	render.JSON(w, r, response.OKWithData(subs))
}
