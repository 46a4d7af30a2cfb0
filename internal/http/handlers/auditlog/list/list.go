// Package list реализует HTTP-обработчик постраничного списка журнала аудита
// с фильтрами из query-строки.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/http/response"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

var errBadQuery = errors.New("bad query")

// Handler обрабатывает запросы на список записей журнала аудита.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает чтение журнала аудита с фильтрами.
type Service interface {
	FindAll(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Журнал аудита
// @Description Возвращает страницу записей журнала аудита, новые первыми. Фильтры объединяются по И.
// @Tags AuditLogs
// @Produce json
// @Security BearerAuth
// @Param actorId query string false "ID автора"
// @Param action query string false "Действие"
// @Param entityType query string false "Тип сущности"
// @Param entityId query string false "ID сущности"
// @Param startDate query string false "Начало периода (RFC3339)"
// @Param endDate query string false "Конец периода (RFC3339)"
// @Param search query string false "Поиск по описанию и имени сущности"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(50)
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse
// @Router /audit-logs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auditlog.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dummy, err := parseDummy(r.URL.Query())
	if err != nil {
		log.Warn("failed to parse query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("page and limit must be integers"))
		return
	}

	if err := h.validate.Struct(dummy); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	query, err := toQuery(dummy)
	if err != nil {
		log.Warn("failed to parse filter", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	page, err := h.service.FindAll(r.Context(), query)
	if err != nil {
		log.Error("failed to list audit logs", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error("could not list audit logs"))
		return
	}

	log.Debug("audit logs listed", slog.Int("count", len(page.Data)), slog.Int64("total", page.Total))
	render.JSON(w, r, response.List(page.Data, response.NewMeta(page.Total, page.Page, page.Limit)))
}

func parseDummy(q url.Values) (models.DummyAuditLogQuery, error) {
	dummy := models.DummyAuditLogQuery{
		ActorID:    q.Get("actorId"),
		Action:     q.Get("action"),
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		StartDate:  q.Get("startDate"),
		EndDate:    q.Get("endDate"),
		Search:     q.Get("search"),
	}

	var err error
	if s := q.Get("page"); s != "" {
		if dummy.Page, err = strconv.Atoi(s); err != nil {
			return dummy, errBadQuery
		}
	}
	if s := q.Get("limit"); s != "" {
		if dummy.Limit, err = strconv.Atoi(s); err != nil {
			return dummy, errBadQuery
		}
	}
	return dummy, nil
}

func toQuery(d models.DummyAuditLogQuery) (models.AuditLogQuery, error) {
	query := models.AuditLogQuery{
		Action:     models.AuditAction(d.Action),
		EntityType: models.AuditEntityType(d.EntityType),
		EntityID:   d.EntityID,
		Search:     d.Search,
		Page:       d.Page,
		Limit:      d.Limit,
	}

	if d.ActorID != "" {
		id, err := primitive.ObjectIDFromHex(d.ActorID)
		if err != nil {
			return query, errors.New("invalid actorId")
		}
		query.ActorID = &id
	}
	if d.StartDate != "" {
		t, err := time.Parse(time.RFC3339, d.StartDate)
		if err != nil {
			return query, errors.New("startDate must be RFC3339")
		}
		query.StartDate = &t
	}
	if d.EndDate != "" {
		t, err := time.Parse(time.RFC3339, d.EndDate)
		if err != nil {
			return query, errors.New("endDate must be RFC3339")
		}
		query.EndDate = &t
	}
	return query.Normalize(), nil
}
