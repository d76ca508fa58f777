// Package notification содержит HTTP-обработчики уведомлений пользователя.
// Все операции ограничены уведомлениями субъекта из токена.
package notification

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

// Service описывает бизнес-логику уведомлений.
type Service interface {
	List(ctx context.Context, userID string) ([]models.Notification, error)
	Create(ctx context.Context, userID string, in models.NotificationInput) (*models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, userID string, id int) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Handlers набор обработчиков /notifications.
type Handlers struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handlers.
func New(log *slog.Logger, service Service) *Handlers {
	return &Handlers{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// begin готовит логгер и достаёт субъекта. При отсутствии субъекта ответ уже записан.
func (h *Handlers) begin(w http.ResponseWriter, r *http.Request, op string) (*slog.Logger, models.Principal, bool) {
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	principal, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal missing in context")
		response.RenderStatus(w, r, http.StatusUnauthorized, middlewarectx.MsgMissingToken)
	}
	return log, principal, ok
}

// List godoc
// @Summary Уведомления
// @Description Последние 50 уведомлений пользователя, новые первыми.
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.Notification}
// @Router /notifications [get]
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	log, principal, ok := h.begin(w, r, "handlers.notification.List")
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Notification{}
	}
	render.JSON(w, r, response.OKWithData(list))
}

// Create godoc
// @Summary Создать уведомление
// @Tags Notifications
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param notification body models.NotificationInput true "Уведомление"
// @Success 201 {object} response.Response{data=models.Notification}
// @Failure 400 {object} response.ErrorResponse "Нет заголовка или текста, неверный тип"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Такое уведомление уже есть"
// @Router /notifications [post]
func (h *Handlers) Create(w http.ResponseWriter, r *http.Request) {
	log, principal, ok := h.begin(w, r, "handlers.notification.Create")
	if !ok {
		return
	}

	var in models.NotificationInput
	if err := request.DecodeJSON(r, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), principal.ID, in)
	if err != nil {
		log.Info("failed to create notification", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}

// UnreadCount godoc
// @Summary Число непрочитанных уведомлений
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/unread-count [get]
func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	log, principal, ok := h.begin(w, r, "handlers.notification.UnreadCount")
	if !ok {
		return
	}

	n, err := h.service.UnreadCount(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to count notifications", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]int{"count": n}))
}

// MarkRead godoc
// @Summary Отметить уведомление прочитанным
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID уведомления"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Уведомление не найдено"
// @Router /notifications/{id}/read [put]
func (h *Handlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	log, principal, ok := h.begin(w, r, "handlers.notification.MarkRead")
	if !ok {
		return
	}
	id, err := request.IntParam(r, "id")
	if err != nil {
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err = h.service.MarkRead(r.Context(), principal.ID, id); err != nil {
		log.Info("failed to mark notification", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]string{"message": "notification marked as read"}))
}

// MarkAllRead godoc
// @Summary Отметить все уведомления прочитанными
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /notifications/read-all [put]
func (h *Handlers) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	log, principal, ok := h.begin(w, r, "handlers.notification.MarkAllRead")
	if !ok {
		return
	}

	n, err := h.service.MarkAllRead(r.Context(), principal.ID)
	if err != nil {
		log.Error("failed to mark notifications", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	log.Info("notifications marked as read", slog.Int64("count", n))
	render.JSON(w, r, response.OKWithData(map[string]int64{"updated": n}))
}
