// Package boostadmin собирает HTTP API административной панели.
package boostadmin

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/http/handlers/auditlog/byentity"
	auditbyuser "github.com/magabrotheeeer/boost-admin/internal/http/handlers/auditlog/byuser"
	"github.com/magabrotheeeer/boost-admin/internal/http/handlers/auditlog/cleanup"
	auditlist "github.com/magabrotheeeer/boost-admin/internal/http/handlers/auditlog/list"
	auditread "github.com/magabrotheeeer/boost-admin/internal/http/handlers/auditlog/read"
	boostbyuser "github.com/magabrotheeeer/boost-admin/internal/http/handlers/boosts/byuser"
	"github.com/magabrotheeeer/boost-admin/internal/http/handlers/health"
	"github.com/magabrotheeeer/boost-admin/internal/http/handlers/plans/features"
	planlist "github.com/magabrotheeeer/boost-admin/internal/http/handlers/plans/list"
	planread "github.com/magabrotheeeer/boost-admin/internal/http/handlers/plans/read"
	settingsget "github.com/magabrotheeeer/boost-admin/internal/http/handlers/settings/get"
	settingsupdate "github.com/magabrotheeeer/boost-admin/internal/http/handlers/settings/update"
	"github.com/magabrotheeeer/boost-admin/internal/http/middlewarectx"
	"github.com/magabrotheeeer/boost-admin/internal/lib/jwt"
	"github.com/magabrotheeeer/boost-admin/internal/metrics"
)

// AuditLogService - операции журнала аудита, доступные через API.
type AuditLogService interface {
	auditlist.Service
	auditread.Service
	byentity.Service
	auditbyuser.Service
	cleanup.Service
}

// SettingsService - чтение и изменение глобальных настроек.
type SettingsService interface {
	settingsget.Service
	settingsupdate.Service
}

// PlansService - тарифы и их возможности.
type PlansService interface {
	planlist.Service
	planread.Service
	features.Service
}

// Services - зависимости обработчиков.
type Services struct {
	AuditLogs AuditLogService
	Settings  SettingsService
	Plans     PlansService
	Boosts    boostbyuser.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, tokens middlewarectx.TokenParser, cfg config.HTTPServer) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.HTTPMetrics,
	)

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(tokens, logger))
		r.Use(middlewarectx.RequireRole(jwt.RoleAdmin, logger))
		r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst))

		r.Route("/audit-logs", func(r chi.Router) {
			r.Get("/", auditlist.New(logger, svc.AuditLogs).ServeHTTP)
			r.Delete("/cleanup", cleanup.New(logger, svc.AuditLogs).ServeHTTP)
			r.Get("/entity/{entityType}/{entityId}", byentity.New(logger, svc.AuditLogs).ServeHTTP)
			r.Get("/user/{userId}", auditbyuser.New(logger, svc.AuditLogs).ServeHTTP)
			r.Get("/{id}", auditread.New(logger, svc.AuditLogs).ServeHTTP)
		})

		r.Get("/settings", settingsget.New(logger, svc.Settings).ServeHTTP)
		r.Patch("/settings", settingsupdate.New(logger, svc.Settings).ServeHTTP)

		r.Get("/plans", planlist.New(logger, svc.Plans).ServeHTTP)
		r.Get("/plans/{id}", planread.New(logger, svc.Plans).ServeHTTP)
		r.Put("/plans/{id}/features", features.New(logger, svc.Plans).ServeHTTP)

		r.Get("/boosts/user/{userId}", boostbyuser.New(logger, svc.Boosts).ServeHTTP)
	})
}
