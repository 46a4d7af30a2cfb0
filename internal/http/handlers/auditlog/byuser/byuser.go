// Package byuser реализует HTTP-обработчик действий одного пользователя.
package byuser

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/http/response"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Действия пользователя
// @Tags AuditLogs
// @Produce json
// @Security BearerAuth
// @Param userId path string true "ID пользователя"
// @Param limit query int false "Количество записей" default(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 500 {object} response.ErrorResponse
// @Router /audit-logs/user/{userId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auditlog.byuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userId"))
	if err != nil {
		log.Warn("failed to decode user id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	var limit int
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err = strconv.Atoi(s)
		if err != nil || limit < 0 {
			log.Warn("invalid limit", slog.String("limit", s))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be a non-negative integer"))
			return
		}
	}

	logs, err := h.service.FindByUser(r.Context(), userID, limit)
	if err != nil {
		log.Error("failed to find user activity", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not load user activity"))
		return
	}

	render.JSON(w, r, response.OK("", logs))
}
