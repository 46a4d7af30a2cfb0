// Package auditlog записывает действия администраторов в журнал аудита и
// предоставляет выборки по нему.
//
// Запись в журнал - чистое добавление. Автор и метаданные запроса берутся из
// контекста (см. WithActor), если не переданы явно. После успешной вставки
// событие публикуется в брокер, если он настроен; ошибка публикации только
// логируется.
package auditlog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/metrics"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// Ограничения выборок.
const (
	MaxEntityLogs        = 100
	DefaultUserLogs      = 50
	DefaultRetentionDays = 90
)

// Repository описывает хранилище журнала аудита.
type Repository interface {
	Insert(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error)
	FindOne(ctx context.Context, id primitive.ObjectID) (*models.AuditLogEntry, error)
	FindWithFilters(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error)
	FindByEntity(ctx context.Context, entityType models.AuditEntityType, entityID string, limit int) ([]models.AuditLogEntry, error)
	FindByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error)
	DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error)
}

// Publisher отправляет события аудита во внешний брокер.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// LogOptions - необязательные поля записи журнала.
type LogOptions struct {
	ActorID           *primitive.ObjectID
	EntityID          string
	EntityName        string
	OldValues         map[string]any
	NewValues         map[string]any
	Description       string
	Metadata          *models.AuditMetadata
	IsSystemGenerated bool
}

// Event - сообщение о новой записи журнала, публикуемое в брокер.
type Event struct {
	ID                string                 `json:"id"`
	Action            models.AuditAction     `json:"action"`
	EntityType        models.AuditEntityType `json:"entityType"`
	EntityID          string                 `json:"entityId,omitempty"`
	ActorID           string                 `json:"actorId,omitempty"`
	Description       string                 `json:"description,omitempty"`
	IsSystemGenerated bool                   `json:"isSystemGenerated"`
	CreatedAt         time.Time              `json:"createdAt"`
}

// RoutingKey возвращает ключ маршрутизации события: audit.<entityType>.<action>.
func RoutingKey(entityType models.AuditEntityType, action models.AuditAction) string {
	return fmt.Sprintf("audit.%s.%s", entityType, action)
}

// Service - сервис журнала аудита.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
}

// New создаёт сервис. publisher может быть nil: тогда события не публикуются.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Log добавляет запись в журнал.
func (s *Service) Log(ctx context.Context, action models.AuditAction, entityType models.AuditEntityType, opts LogOptions) (*models.AuditLogEntry, error) {
	const op = "services.auditlog.Log"

	entry := models.AuditLogEntry{
		ActorID:           opts.ActorID,
		Action:            action,
		EntityType:        entityType,
		EntityID:          opts.EntityID,
		EntityName:        opts.EntityName,
		OldValues:         opts.OldValues,
		NewValues:         opts.NewValues,
		Changes:           computeChanges(opts.OldValues, opts.NewValues),
		Description:       opts.Description,
		Metadata:          opts.Metadata,
		IsSystemGenerated: opts.IsSystemGenerated,
	}

	if actor, ok := ActorFromContext(ctx); ok && !opts.IsSystemGenerated {
		if entry.ActorID == nil {
			entry.ActorID = actor.UserID
		}
		if entry.Metadata == nil && (actor.IPAddress != "" || actor.UserAgent != "") {
			entry.Metadata = &models.AuditMetadata{
				IPAddress: actor.IPAddress,
				UserAgent: actor.UserAgent,
			}
		}
	}

	created, err := s.repo.Insert(ctx, entry)
	if err != nil {
		metrics.AuditLogsFailed.Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.AuditLogsRecorded.WithLabelValues(string(action), string(entityType)).Inc()

	s.publish(ctx, created)
	return created, nil
}

func (s *Service) publish(ctx context.Context, entry *models.AuditLogEntry) {
	if s.publisher == nil {
		return
	}

	event := Event{
		ID:                entry.ID.Hex(),
		Action:            entry.Action,
		EntityType:        entry.EntityType,
		EntityID:          entry.EntityID,
		Description:       entry.Description,
		IsSystemGenerated: entry.IsSystemGenerated,
		CreatedAt:         entry.CreatedAt,
	}
	if entry.ActorID != nil {
		event.ActorID = entry.ActorID.Hex()
	}

	if err := s.publisher.Publish(ctx, RoutingKey(entry.EntityType, entry.Action), event); err != nil {
		s.log.Warn("failed to publish audit event",
			slog.String("id", event.ID),
			sl.Err(err),
		)
	}
}

// FindAll возвращает страницу журнала по фильтрам.
func (s *Service) FindAll(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error) {
	const op = "services.auditlog.FindAll"
	page, err := s.repo.FindWithFilters(ctx, query.Normalize())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

// FindOne возвращает запись по id; apperr.ErrNotFound, если её нет.
func (s *Service) FindOne(ctx context.Context, id primitive.ObjectID) (*models.AuditLogEntry, error) {
	const op = "services.auditlog.FindOne"
	entry, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if entry == nil {
		return nil, fmt.Errorf("%s: audit log %s: %w", op, id.Hex(), apperr.ErrNotFound)
	}
	return entry, nil
}

// FindByEntity возвращает последние записи по сущности (не более MaxEntityLogs).
func (s *Service) FindByEntity(ctx context.Context, entityType models.AuditEntityType, entityID string) ([]models.AuditLogEntry, error) {
	const op = "services.auditlog.FindByEntity"
	entries, err := s.repo.FindByEntity(ctx, entityType, entityID, MaxEntityLogs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// FindByUser возвращает последние записи пользователя. limit < 1 заменяется на DefaultUserLogs.
func (s *Service) FindByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error) {
	const op = "services.auditlog.FindByUser"
	if limit < 1 {
		limit = DefaultUserLogs
	}
	entries, err := s.repo.FindByActor(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entries, nil
}

// DeleteOldLogs удаляет записи старше daysToKeep дней и возвращает их количество.
func (s *Service) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	const op = "services.auditlog.DeleteOldLogs"
	if daysToKeep < 0 || daysToKeep > models.MaxRetentionDays {
		return 0, fmt.Errorf("%s: daysToKeep %d out of range [0, %d]: %w",
			op, daysToKeep, models.MaxRetentionDays, apperr.ErrValidation)
	}
	deleted, err := s.repo.DeleteOldLogs(ctx, daysToKeep)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if deleted > 0 {
		metrics.AuditLogsPurged.Add(float64(deleted))
	}
	return deleted, nil
}
