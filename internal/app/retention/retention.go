// Package retention собирает процесс очистки журнала аудита по расписанию.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/metrics"
	"github.com/magabrotheeeer/boost-admin/internal/migrations"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
	retentionservice "github.com/magabrotheeeer/boost-admin/internal/services/retention"
	"github.com/magabrotheeeer/boost-admin/internal/storage/mongodb"
)

// App представляет приложение очистки.
type App struct {
	service   *retentionservice.Service
	db        *mongodb.Storage
	publisher *rabbitmq.Publisher
	logger    *slog.Logger
}

// New подключается к MongoDB и, если задан URL, к RabbitMQ.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := mongodb.New(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.Client, cfg.Mongo.Database, cfg.Mongo.MigrationsPath); err != nil {
		_ = db.Close(context.Background())
		return nil, err
	}

	metrics.Init()

	app := &App{
		db:     db,
		logger: logger,
	}

	var publisher auditlog.Publisher
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, audit events will not be published", sl.Err(err))
		} else {
			app.publisher = p
			publisher = p
		}
	}

	audit := auditlog.New(db.AuditLogs(), publisher, logger)
	svc, err := retentionservice.New(audit, cfg.AuditLog, logger)
	if err != nil {
		app.close()
		return nil, err
	}
	app.service = svc
	return app, nil
}

// Run выполняет очистку по расписанию до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	return a.service.Start(ctx)
}

// RunOnce выполняет один проход очистки.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.close()
	_, err := a.service.RunOnce(ctx)
	return err
}

func (a *App) close() {
	a.logger.Info("shutting down retention")

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq publisher", sl.Err(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.db.Close(ctx); err != nil {
		a.logger.Error("failed to close mongodb", sl.Err(err))
	}
}
