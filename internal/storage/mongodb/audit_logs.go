package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

var actorPopulate = Populate{
	LocalField: "actor",
	From:       CollectionUsers,
	As:         "actorDetails",
	Select:     []string{"username", "email", "firstName", "lastName"},
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// AuditLogs - хранилище журнала аудита. Записи только добавляются; удалить их
// можно лишь через DeleteOldLogs.
type AuditLogs struct {
	repo *Repository[models.AuditLogEntry]
	now  func() time.Time
}

// NewAuditLogs создаёт хранилище журнала аудита.
func NewAuditLogs(db *mongo.Database) *AuditLogs {
	return &AuditLogs{
		repo: NewRepository[models.AuditLogEntry](db.Collection(CollectionAuditLogs), false),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Insert сохраняет новую запись журнала.
func (s *AuditLogs) Insert(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	const op = "storage.mongodb.AuditLogs.Insert"
	entry.ActorDetails = nil
	res, err := s.repo.Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindOne возвращает запись с подставленным автором или nil.
func (s *AuditLogs) FindOne(ctx context.Context, id primitive.ObjectID) (*models.AuditLogEntry, error) {
	const op = "storage.mongodb.AuditLogs.FindOne"
	res, err := s.repo.FindByID(ctx, id, actorPopulate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindWithFilters возвращает страницу журнала, отсортированную от новых к старым.
// Total считается по тому же фильтру без пагинации.
func (s *AuditLogs) FindWithFilters(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error) {
	const op = "storage.mongodb.AuditLogs.FindWithFilters"

	query = query.Normalize()
	filter := buildAuditFilter(query)

	data, err := s.repo.FindAll(ctx, filter, FindOptions{
		Skip:  query.Skip(),
		Limit: int64(query.Limit),
		Sort:  newestFirst,
	}, actorPopulate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.AuditLogPage{
		Data:  data,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

// FindByEntity возвращает не более limit последних записей по сущности.
func (s *AuditLogs) FindByEntity(ctx context.Context, entityType models.AuditEntityType, entityID string, limit int) ([]models.AuditLogEntry, error) {
	const op = "storage.mongodb.AuditLogs.FindByEntity"
	res, err := s.repo.FindAll(ctx,
		bson.M{"entityType": entityType, "entityId": entityID},
		FindOptions{Limit: int64(limit), Sort: newestFirst},
		actorPopulate,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindByActor возвращает не более limit последних записей пользователя.
func (s *AuditLogs) FindByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error) {
	const op = "storage.mongodb.AuditLogs.FindByActor"
	res, err := s.repo.FindAll(ctx,
		bson.M{"actor": actorID},
		FindOptions{Limit: int64(limit), Sort: newestFirst},
		actorPopulate,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// DeleteOldLogs удаляет записи старше daysToKeep дней. Граница вычисляется
// один раз в начале вызова; повторный вызов с тем же аргументом ничего не удаляет.
func (s *AuditLogs) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	const op = "storage.mongodb.AuditLogs.DeleteOldLogs"

	if daysToKeep < 0 || daysToKeep > models.MaxRetentionDays {
		return 0, fmt.Errorf("%s: daysToKeep %d out of range [0, %d]: %w",
			op, daysToKeep, models.MaxRetentionDays, apperr.ErrValidation)
	}

	cutoff := retentionCutoff(s.now(), daysToKeep)
	deleted, err := s.repo.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}

func retentionCutoff(now time.Time, daysToKeep int) time.Time {
	return now.AddDate(0, 0, -daysToKeep)
}

// buildAuditFilter собирает конъюнктивный фильтр; пустые параметры не участвуют.
func buildAuditFilter(q models.AuditLogQuery) bson.M {
	filter := bson.M{}

	if q.ActorID != nil {
		filter["actor"] = *q.ActorID
	}
	if q.Action != "" {
		filter["action"] = q.Action
	}
	if q.EntityType != "" {
		filter["entityType"] = q.EntityType
	}
	if q.EntityID != "" {
		filter["entityId"] = q.EntityID
	}

	if q.StartDate != nil || q.EndDate != nil {
		createdAt := bson.M{}
		if q.StartDate != nil {
			createdAt["$gte"] = *q.StartDate
		}
		if q.EndDate != nil {
			createdAt["$lte"] = *q.EndDate
		}
		filter["createdAt"] = createdAt
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"description": pattern},
			bson.M{"entityName": pattern},
		}
	}

	return filter
}
