package category

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/request"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// AdminService операции справочника категорий для администратора.
type AdminService interface {
	ListAll(ctx context.Context) ([]models.CategoryWithStats, error)
	Create(ctx context.Context, in models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, id int, patch models.CategoryPatch) (*models.Category, error)
	ToggleStatus(ctx context.Context, id int) (bool, error)
}

// AdminHandlers набор обработчиков /admin/categories.
type AdminHandlers struct {
	log      *slog.Logger
	service  AdminService
	validate *validator.Validate
}

// NewAdmin создает AdminHandlers.
func NewAdmin(log *slog.Logger, service AdminService) *AdminHandlers {
	return &AdminHandlers{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// List godoc
// @Summary Все категории
// @Description Все категории, включая отключённые, со статистикой по всем пользователям.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.CategoryWithStats}
// @Failure 401 {object} response.ErrorResponse "Требуется токен администратора"
// @Router /admin/categories [get]
func (h *AdminHandlers) List(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.admin.List", r)

	cats, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(cats))
}

// Create godoc
// @Summary Создать категорию
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param category body models.CategoryInput true "Категория"
// @Success 201 {object} response.Response{data=models.Category}
// @Failure 400 {object} response.ErrorResponse "Не указано название"
// @Failure 409 {object} response.ErrorResponse "Название занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/categories [post]
func (h *AdminHandlers) Create(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.admin.Create", r)

	var in models.CategoryInput
	if err := request.DecodeJSON(r, &in); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		log.Info("failed to create category", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(created))
}

// Update godoc
// @Summary Обновить категорию
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Param category body models.CategoryPatch true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Category}
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Router /admin/categories/{id} [put]
func (h *AdminHandlers) Update(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.admin.Update", r)

	id, err := request.IntParam(r, "id")
	if err != nil {
		response.RenderStatus(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}
	var patch models.CategoryPatch
	if err = request.DecodeJSON(r, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderStatus(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err = h.validate.Struct(patch); err != nil {
		response.RenderValidation(w, r, err)
		return
	}

	updated, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		log.Info("failed to update category", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(updated))
}

// ToggleStatus godoc
// @Summary Включить или отключить категорию
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID категории"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Категория не найдена"
// @Router /admin/categories/{id}/toggle-status [put]
func (h *AdminHandlers) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, "handlers.category.admin.ToggleStatus", r)

	id, err := request.IntParam(r, "id")
	if err != nil {
		response.RenderStatus(w, r, http.StatusBadRequest, msgInvalidID)
		return
	}

	active, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		log.Info("failed to toggle category", slog.Int("id", id), sl.Err(err))
		response.RenderError(w, r, err)
		return
	}
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":        id,
		"is_active": active,
	}))
}
