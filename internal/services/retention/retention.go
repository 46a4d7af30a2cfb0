// Package retention периодически удаляет устаревшие записи журнала аудита.
package retention

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/models"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
)

// AuditService - операции журнала аудита, нужные очистке.
type AuditService interface {
	DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error)
	Log(ctx context.Context, action models.AuditAction, entityType models.AuditEntityType, opts auditlog.LogOptions) (*models.AuditLogEntry, error)
}

// Result - итог одного прохода очистки.
type Result struct {
	SweepID string
	Deleted int64
}

// Service запускает очистку по расписанию cron.
type Service struct {
	audit      AuditService
	daysToKeep int
	schedule   string
	runOnStart bool
	log        *slog.Logger
}

// New создаёт сервис очистки по настройкам журнала аудита. Срок хранения
// должен быть от 1 до models.MaxRetentionDays дней.
func New(audit AuditService, cfg config.AuditLog, log *slog.Logger) (*Service, error) {
	const op = "services.retention.New"

	if cfg.RetentionDays < 1 || cfg.RetentionDays > models.MaxRetentionDays {
		return nil, fmt.Errorf("%s: retention_days %d out of range [1, %d]: %w",
			op, cfg.RetentionDays, models.MaxRetentionDays, apperr.ErrValidation)
	}
	return &Service{
		audit:      audit,
		daysToKeep: cfg.RetentionDays,
		schedule:   cfg.SweepSchedule,
		runOnStart: cfg.SweepOnStart,
		log:        log,
	}, nil
}

// RunOnce выполняет один проход очистки. Если что-то удалено, в журнал
// добавляется системная запись о проходе.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	const op = "services.retention.RunOnce"

	res := Result{SweepID: uuid.NewString()}
	log := s.log.With(
		slog.String("op", op),
		slog.String("sweep_id", res.SweepID),
	)

	deleted, err := s.audit.DeleteOldLogs(ctx, s.daysToKeep)
	if err != nil {
		log.Error("retention sweep failed", sl.Err(err))
		return res, fmt.Errorf("%s: %w", op, err)
	}
	res.Deleted = deleted
	log.Info("retention sweep finished",
		slog.Int64("deleted", deleted),
		slog.Int("days_to_keep", s.daysToKeep),
	)

	if deleted == 0 {
		return res, nil
	}

	_, err = s.audit.Log(ctx, models.ActionDelete, models.EntityAuditLog, auditlog.LogOptions{
		EntityName:        "retention sweep",
		Description:       fmt.Sprintf("Removed %d audit log entries older than %d days", deleted, s.daysToKeep),
		IsSystemGenerated: true,
		Metadata: &models.AuditMetadata{Extra: map[string]any{
			"sweepId":    res.SweepID,
			"deleted":    deleted,
			"daysToKeep": s.daysToKeep,
		}},
	})
	if err != nil {
		log.Warn("failed to record retention sweep", sl.Err(err))
	}
	return res, nil
}

// Start запускает очистку по расписанию и блокируется до отмены ctx.
// После отмены дожидается завершения выполняющегося прохода.
func (s *Service) Start(ctx context.Context) error {
	const op = "services.retention.Start"

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { _, _ = s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("%s: invalid schedule %q: %w", op, s.schedule, err)
	}

	if s.runOnStart {
		_, _ = s.RunOnce(ctx)
	}

	s.log.Info("retention scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("days_to_keep", s.daysToKeep),
	)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("retention scheduler stopped")
	return nil
}
