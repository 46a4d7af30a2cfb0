package boostadmin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/boost-admin/internal/cache"
	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/jwt"
	"github.com/magabrotheeeer/boost-admin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/metrics"
	"github.com/magabrotheeeer/boost-admin/internal/migrations"
	"github.com/magabrotheeeer/boost-admin/internal/revenuecat"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
	"github.com/magabrotheeeer/boost-admin/internal/services/boosts"
	"github.com/magabrotheeeer/boost-admin/internal/services/plans"
	"github.com/magabrotheeeer/boost-admin/internal/services/settings"
	"github.com/magabrotheeeer/boost-admin/internal/storage/mongodb"
)

const shutdownTimeout = 15 * time.Second

// App - HTTP API административной панели со всеми зависимостями.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *mongodb.Storage
	cache     *cache.Cache
	publisher *rabbitmq.Publisher
}

// New подключает хранилища, применяет миграции и собирает роутер.
// Redis и RabbitMQ необязательны: без них кэш не используется, а события
// аудита не публикуются.
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
		logger: logger,
		db:     db,
	}

	var store settings.Cache = cache.Noop{}
	if cfg.Redis.AddressRedis != "" {
		redisCache, err := cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", sl.Err(err))
		} else {
			app.cache = redisCache
			store = redisCache
		}
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

	auditService := auditlog.New(db.AuditLogs(), publisher, logger)
	svc := Services{
		AuditLogs: auditService,
		Settings:  settings.New(db.Settings(), store, auditService, cfg.Cache.Settings, logger),
		Plans: plans.New(db.RevenueCats(), revenuecat.NewClient(cfg.RevenueCat),
			store, auditService, cfg.Cache.Catalog, logger),
		Boosts: boosts.New(db.Boosts(), logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), cfg.HTTPServer)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает
// сервер и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		a.logger.Info("shutting down HTTP server gracefully")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = a.server.Shutdown(timeoutCtx)
	}

	a.close()
	return err
}

func (a *App) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close rabbitmq publisher", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(ctx); err != nil {
		a.logger.Error("failed to close mongodb", sl.Err(err))
	}
}
