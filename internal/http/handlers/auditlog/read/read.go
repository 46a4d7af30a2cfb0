// Package read реализует HTTP-обработчик получения записи журнала аудита по ID.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/http/response"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// Handler обрабатывает запросы на чтение одной записи аудита.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение записи аудита по идентификатору.
type Service interface {
	FindOne(ctx context.Context, id primitive.ObjectID) (*models.AuditLogEntry, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запись журнала аудита
// @Tags AuditLogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID записи"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 500 {object} response.ErrorResponse
// @Router /audit-logs/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auditlog.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	entry, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		status := response.StatusFor(err)
		if status == http.StatusNotFound {
			log.Info("audit log not found", slog.String("id", id.Hex()))
			render.Status(r, status)
			render.JSON(w, r, response.Error("audit log not found"))
			return
		}
		log.Error("failed to read audit log", sl.Err(err))
		render.Status(r, status)
		render.JSON(w, r, response.Error("could not read audit log"))
		return
	}

	render.JSON(w, r, response.OK("", entry))
}
