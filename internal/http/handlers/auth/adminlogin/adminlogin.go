// Package adminlogin реализует HTTP-обработчик входа администратора.
package adminlogin

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Request учётные данные администратора.
type Request struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// Service описывает интерфейс входа администратора.
type Service interface {
	AdminLogin(ctx context.Context, email, password string) (*models.AdminAuthResult, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход администратора
// @Description Возвращает токен администратора. Токен не подходит для пользовательских маршрутов.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные администратора"
// @Success 200 {object} response.Response{data=models.AdminAuthResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные или аккаунт отключён"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/admin/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.adminlogin"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := request.DecodeJSON(r, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.RenderValidation(w, r, err)
		return
	}

	res, err := h.service.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("admin login failed", slog.String("email", req.Email), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("admin login success", slog.String("admin_id", res.Admin.ID))
	render.JSON(w, r, response.OKWithData(res))
}
