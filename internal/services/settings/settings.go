// Package settings управляет единственным документом настроек приложения.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
)

const cacheKey = "settings:global"

// Repository описывает хранилище настроек.
type Repository interface {
	GetOrCreate(ctx context.Context, defaults models.Settings) (*models.Settings, error)
	Update(ctx context.Context, fields map[string]any) (*models.Settings, error)
}

// Cache описывает кэш прочитанного документа.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// AuditLogger записывает изменения в журнал аудита.
type AuditLogger interface {
	Log(ctx context.Context, action models.AuditAction, entityType models.AuditEntityType, opts auditlog.LogOptions) (*models.AuditLogEntry, error)
}

// Service читает и изменяет настройки.
type Service struct {
	repo  Repository
	cache Cache
	audit AuditLogger
	ttl   time.Duration
	log   *slog.Logger
}

// New создаёт сервис настроек. ttl - время жизни документа в кэше.
func New(repo Repository, cache Cache, audit AuditLogger, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		audit: audit,
		ttl:   ttl,
		log:   log,
	}
}

// Get возвращает настройки, создавая документ со значениями по умолчанию при первом чтении.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	const op = "services.settings.Get"

	var cached models.Settings
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read settings from cache", sl.Err(err))
	} else if found {
		return &cached, nil
	}

	doc, err := s.repo.GetOrCreate(ctx, models.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(ctx, cacheKey, doc, s.ttl); err != nil {
		s.log.Warn("failed to cache settings", sl.Err(err))
	}
	return doc, nil
}

// Update изменяет переданные поля. Пустое обновление возвращает текущие настройки.
// Изменение записывается в журнал аудита; ошибка записи не прерывает операцию.
func (s *Service) Update(ctx context.Context, upd models.SettingsUpdate) (*models.Settings, error) {
	const op = "services.settings.Update"

	before, err := s.repo.GetOrCreate(ctx, models.DefaultSettings())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if upd.Empty() {
		return before, nil
	}

	after, err := s.repo.Update(ctx, upd.Fields())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if after == nil {
		return nil, fmt.Errorf("%s: settings: %w", op, apperr.ErrNotFound)
	}

	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate settings cache", sl.Err(err))
	}

	_, err = s.audit.Log(ctx, models.ActionUpdate, models.EntitySettings, auditlog.LogOptions{
		EntityID:    after.ID.Hex(),
		EntityName:  models.SettingsKey,
		OldValues:   before.Snapshot(),
		NewValues:   after.Snapshot(),
		Description: "Updated application settings",
	})
	if err != nil {
		s.log.Warn("failed to record settings update", sl.Err(err))
	}

	return after, nil
}
