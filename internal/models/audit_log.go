// Package models содержит документы MongoDB и DTO, которыми обмениваются
// хранилище, сервисы и HTTP-обработчики.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction - действие, зафиксированное в журнале аудита.
type AuditAction string

// Допустимые действия журнала аудита.
const (
	ActionCreate  AuditAction = "create"
	ActionUpdate  AuditAction = "update"
	ActionDelete  AuditAction = "delete"
	ActionLogin   AuditAction = "login"
	ActionLogout  AuditAction = "logout"
	ActionView    AuditAction = "view"
	ActionExport  AuditAction = "export"
	ActionImport  AuditAction = "import"
	ActionApprove AuditAction = "approve"
	ActionReject  AuditAction = "reject"
	ActionOther   AuditAction = "other"
)

// AuditEntityType - тип бизнес-сущности, к которой относится запись аудита.
type AuditEntityType string

// Допустимые типы сущностей журнала аудита.
const (
	EntityUser             AuditEntityType = "user"
	EntityPost             AuditEntityType = "post"
	EntityComment          AuditEntityType = "comment"
	EntitySettings         AuditEntityType = "settings"
	EntityRevenueCatPlan   AuditEntityType = "revenuecat_plan"
	EntityBoost            AuditEntityType = "boost"
	EntityAuditLog         AuditEntityType = "audit_log"
	EntityBusinessCategory AuditEntityType = "business_category"
	EntitySystem           AuditEntityType = "system"
)

// FieldChange - старое и новое значение одного поля.
type FieldChange struct {
	Old any `bson:"old,omitempty" json:"old,omitempty"`
	New any `bson:"new,omitempty" json:"new,omitempty"`
}

// AuditMetadata - сведения о запросе, в рамках которого выполнено действие.
// Extra хранит произвольные данные без статической типизации.
type AuditMetadata struct {
	IPAddress string         `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent string         `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	Extra     map[string]any `bson:"extra,omitempty" json:"extra,omitempty"`
}

// ActorSummary - безопасное для отображения подмножество полей пользователя.
type ActorSummary struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Username  string             `bson:"username,omitempty" json:"username,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty"`
	FirstName string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
}

// AuditLogEntry - неизменяемая запись журнала аудита (коллекция audit_logs).
// ActorDetails заполняется только при чтении и никогда не сохраняется.
type AuditLogEntry struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	ActorID           *primitive.ObjectID    `bson:"actor,omitempty" json:"actorId,omitempty"`
	ActorDetails      *ActorSummary          `bson:"actorDetails,omitempty" json:"actor,omitempty"`
	Action            AuditAction            `bson:"action" json:"action"`
	EntityType        AuditEntityType        `bson:"entityType" json:"entityType"`
	EntityID          string                 `bson:"entityId,omitempty" json:"entityId,omitempty"`
	EntityName        string                 `bson:"entityName,omitempty" json:"entityName,omitempty"`
	OldValues         map[string]any         `bson:"oldValues,omitempty" json:"oldValues,omitempty"`
	NewValues         map[string]any         `bson:"newValues,omitempty" json:"newValues,omitempty"`
	Changes           map[string]FieldChange `bson:"changes,omitempty" json:"changes,omitempty"`
	Description       string                 `bson:"description,omitempty" json:"description,omitempty"`
	Metadata          *AuditMetadata         `bson:"metadata,omitempty" json:"metadata,omitempty"`
	IsSystemGenerated bool                   `bson:"isSystemGenerated" json:"isSystemGenerated"`
	CreatedAt         time.Time              `bson:"createdAt" json:"createdAt"`
}

// Stamp выставляет время создания. Запись не имеет updatedAt: она не изменяется.
func (e *AuditLogEntry) Stamp(now time.Time) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
}

// Значения пагинации журнала аудита по умолчанию.
const (
	DefaultAuditPage  = 1
	DefaultAuditLimit = 50
)

// MaxRetentionDays - верхняя граница срока хранения записей журнала (100 лет).
const MaxRetentionDays = 36500

// AuditLogQuery - параметры фильтрации и пагинации журнала аудита.
// Все фильтры необязательны и объединяются по И.
type AuditLogQuery struct {
	ActorID    *primitive.ObjectID
	Action     AuditAction
	EntityType AuditEntityType
	EntityID   string
	StartDate  *time.Time
	EndDate    *time.Time
	Search     string
	Page       int
	Limit      int
}

// Normalize подставляет значения пагинации по умолчанию.
func (q AuditLogQuery) Normalize() AuditLogQuery {
	if q.Page < 1 {
		q.Page = DefaultAuditPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultAuditLimit
	}
	return q
}

// Skip возвращает количество пропускаемых записей для текущей страницы.
func (q AuditLogQuery) Skip() int64 {
	q = q.Normalize()
	return int64(q.Page-1) * int64(q.Limit)
}

// AuditLogPage - страница журнала аудита. Total не зависит от пагинации.
type AuditLogPage struct {
	Data  []AuditLogEntry `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// DummyAuditLogQuery принимает параметры фильтра из query-строки до
// валидации и преобразования в AuditLogQuery.
type DummyAuditLogQuery struct {
	ActorID    string `validate:"omitempty,len=24,hexadecimal"`
	Action     string `validate:"omitempty,oneof=create update delete login logout view export import approve reject other"`
	EntityType string `validate:"omitempty,oneof=user post comment settings revenuecat_plan boost audit_log business_category system"`
	EntityID   string `validate:"omitempty,max=128"`
	StartDate  string `validate:"omitempty"`
	EndDate    string `validate:"omitempty"`
	Search     string `validate:"omitempty,max=200"`
	Page       int    `validate:"omitempty,min=1"`
	Limit      int    `validate:"omitempty,min=1,max=500"`
}
