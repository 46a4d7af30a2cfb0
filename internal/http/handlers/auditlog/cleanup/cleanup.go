// Package cleanup реализует HTTP-обработчик ручной очистки журнала аудита.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/boost-admin/internal/http/response"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
)

var rangeMessage = fmt.Sprintf("daysToKeep must be between 0 and %d", models.MaxRetentionDays)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Очистка журнала аудита
// @Description Удаляет записи старше daysToKeep дней.
// @Tags AuditLogs
// @Produce json
// @Security BearerAuth
// @Param daysToKeep query int false "Сколько дней хранить" default(90) minimum(0) maximum(36500)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректное значение"
// @Failure 500 {object} response.ErrorResponse
// @Router /audit-logs/cleanup [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auditlog.cleanup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days := auditlog.DefaultRetentionDays
	if s := r.URL.Query().Get("daysToKeep"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			log.Warn("invalid daysToKeep", slog.String("daysToKeep", s))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("daysToKeep must be an integer"))
			return
		}
		days = v
	}
	if days < 0 || days > models.MaxRetentionDays {
		log.Warn("daysToKeep out of range", slog.Int("daysToKeep", days))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(rangeMessage))
		return
	}

	deleted, err := h.service.DeleteOldLogs(r.Context(), days)
	if err != nil {
		status := response.StatusFor(err)
		if status == http.StatusBadRequest {
			log.Warn("rejected cleanup", sl.Err(err))
			render.Status(r, status)
			render.JSON(w, r, response.Error(rangeMessage))
			return
		}
		log.Error("failed to delete old audit logs", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, response.Error("could not clean up audit logs"))
		return
	}

	log.Info("old audit logs deleted", slog.Int64("deleted", deleted), slog.Int("daysToKeep", days))
	render.JSON(w, r, response.OK("old audit logs deleted", map[string]any{
		"deletedCount": deleted,
	}))
}
