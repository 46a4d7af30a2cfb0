// Package byentity реализует HTTP-обработчик истории изменений одной сущности.
package byentity

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/boost-admin/internal/http/response"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	FindByEntity(ctx context.Context, entityType models.AuditEntityType, entityID string) ([]models.AuditLogEntry, error)
}

type params struct {
	EntityType string `validate:"required,oneof=user post comment settings revenuecat_plan boost audit_log business_category system"`
	EntityID   string `validate:"required,max=128"`
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary История сущности
// @Description Последние 100 записей аудита по сущности, новые первыми.
// @Tags AuditLogs
// @Produce json
// @Security BearerAuth
// @Param entityType path string true "Тип сущности"
// @Param entityId path string true "ID сущности"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse
// @Router /audit-logs/entity/{entityType}/{entityId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auditlog.byentity"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p := params{
		EntityType: chi.URLParam(r, "entityType"),
		EntityID:   chi.URLParam(r, "entityId"),
	}
	if err := h.validate.Struct(p); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	logs, err := h.service.FindByEntity(r.Context(), models.AuditEntityType(p.EntityType), p.EntityID)
	if err != nil {
		log.Error("failed to find entity history", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not load entity history"))
		return
	}

	render.JSON(w, r, response.OK("", logs))
}
