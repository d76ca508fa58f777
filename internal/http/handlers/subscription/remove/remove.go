// Package remove реализует HTTP-обработчик удаления подписки.
// Подписка деактивируется и пропадает из списков и аналитики.
package remove

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
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс удаления подписки.
type Service interface {
	Remove(ctx context.Context, userID string, id int) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить подписку
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID подписки"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Нет или недействителен токен"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

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

	if err = h.service.Remove(r.Context(), principal.ID, id); err != nil {
		log.Info("failed to remove subscription", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription removed", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "subscription deleted",
	}))
}
