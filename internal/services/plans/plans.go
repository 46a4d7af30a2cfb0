// Package plans объединяет каталог планов RevenueCat с локально хранимыми
// наборами фич.
//
// Если каталог недоступен по любой причине (ключ не задан, сеть, таймаут,
// ответ не 2xx, некорректное тело), сервис не возвращает ошибку, а отдаёт
// локальные планы в сокращённом виде: id, revenuecatId и features.
package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
	"github.com/magabrotheeeer/boost-admin/internal/metrics"
	"github.com/magabrotheeeer/boost-admin/internal/models"
	"github.com/magabrotheeeer/boost-admin/internal/revenuecat"
	"github.com/magabrotheeeer/boost-admin/internal/services/auditlog"
)

const cacheKey = "revenuecat:offerings"

// Repository описывает хранилище локальных планов.
type Repository interface {
	FindAll(ctx context.Context) ([]models.RevenueCatPlan, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.RevenueCatPlan, error)
	UpdateFeatures(ctx context.Context, id primitive.ObjectID, features []string) (*models.RevenueCatPlan, error)
}

// Catalog - источник каталога предложений.
type Catalog interface {
	GetOfferings(ctx context.Context) (*revenuecat.OfferingsResponse, error)
}

// Cache описывает кэш каталога.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AuditLogger записывает изменения в журнал аудита.
type AuditLogger interface {
	Log(ctx context.Context, action models.AuditAction, entityType models.AuditEntityType, opts auditlog.LogOptions) (*models.AuditLogEntry, error)
}

// Service - сервис планов.
type Service struct {
	repo    Repository
	catalog Catalog
	cache   Cache
	audit   AuditLogger
	ttl     time.Duration
	log     *slog.Logger
}

// New создаёт сервис. ttl - время жизни каталога в кэше.
func New(repo Repository, catalog Catalog, cache Cache, audit AuditLogger, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		audit:   audit,
		ttl:     ttl,
		log:     log,
	}
}

// GetAllPlansWithFeatures возвращает пакеты каталога с фичами из локального хранилища.
// Пакет без локальной записи получает пустой список фич.
func (s *Service) GetAllPlansWithFeatures(ctx context.Context) ([]models.PlanWithFeatures, error) {
	const op = "services.plans.GetAllPlansWithFeatures"

	local, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	offerings, err := s.offerings(ctx)
	if err != nil {
		s.logFallback(err)
		return localPlans(local), nil
	}

	return mergePlans(offerings, local), nil
}

func (s *Service) offerings(ctx context.Context) (*revenuecat.OfferingsResponse, error) {
	var cached revenuecat.OfferingsResponse
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read catalog from cache", sl.Err(err))
	} else if found {
		return &cached, nil
	}

	offerings, err := s.catalog.GetOfferings(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, offerings, s.ttl); err != nil {
		s.log.Warn("failed to cache catalog", sl.Err(err))
	}
	return offerings, nil
}

func (s *Service) logFallback(err error) {
	var statusErr *revenuecat.StatusError
	switch {
	case errors.Is(err, revenuecat.ErrNotConfigured):
		metrics.CatalogFallbacks.WithLabelValues("not_configured").Inc()
		s.log.Debug("revenuecat is not configured, serving local plans")
	case errors.As(err, &statusErr):
		metrics.CatalogFallbacks.WithLabelValues("status").Inc()
		s.log.Warn("revenuecat returned an error, serving local plans",
			slog.Int("status", statusErr.StatusCode),
			sl.Err(err),
		)
	case errors.Is(err, apperr.ErrExternalService):
		metrics.CatalogFallbacks.WithLabelValues("unavailable").Inc()
		s.log.Warn("revenuecat is unavailable, serving local plans", sl.Err(err))
	default:
		metrics.CatalogFallbacks.WithLabelValues("error").Inc()
		s.log.Warn("failed to fetch revenuecat catalog, serving local plans", sl.Err(err))
	}
}

func mergePlans(offerings *revenuecat.OfferingsResponse, local []models.RevenueCatPlan) []models.PlanWithFeatures {
	byRevenueCatID := make(map[string]models.RevenueCatPlan, len(local))
	for _, p := range local {
		byRevenueCatID[p.RevenueCatID] = p
	}

	plans := make([]models.PlanWithFeatures, 0)
	for _, offering := range offerings.Offerings {
		for _, pkg := range offering.Packages {
			plan := models.PlanWithFeatures{
				ID:           pkg.Identifier,
				RevenueCatID: pkg.Identifier,
				OfferingID:   offering.Identifier,
				PackageType:  pkg.PackageType,
				DisplayName:  pkg.Product.DisplayName,
				Description:  pkg.Product.Description,
				PriceString:  pkg.Product.PriceString,
				Price:        pkg.Product.Price,
				CurrencyCode: pkg.Product.CurrencyCode,
				Features:     []string{},
			}
			if lp, ok := byRevenueCatID[pkg.Identifier]; ok {
				plan.ID = lp.ID.Hex()
				if lp.Features != nil {
					plan.Features = lp.Features
				}
			}
			plans = append(plans, plan)
		}
	}
	return plans
}

func localPlans(local []models.RevenueCatPlan) []models.PlanWithFeatures {
	plans := make([]models.PlanWithFeatures, 0, len(local))
	for _, p := range local {
		features := p.Features
		if features == nil {
			features = []string{}
		}
		plans = append(plans, models.PlanWithFeatures{
			ID:           p.ID.Hex(),
			RevenueCatID: p.RevenueCatID,
			Features:     features,
		})
	}
	return plans
}

// GetPlanByID возвращает локальный план; apperr.ErrNotFound, если его нет.
func (s *Service) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*models.RevenueCatPlan, error) {
	const op = "services.plans.GetPlanByID"
	plan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if plan == nil {
		return nil, fmt.Errorf("%s: plan %s: %w", op, id.Hex(), apperr.ErrNotFound)
	}
	return plan, nil
}

// UpdatePlanFeatures заменяет список фич плана целиком. Для неизвестного id
// возвращает apperr.ErrNotFound и ничего не изменяет.
func (s *Service) UpdatePlanFeatures(ctx context.Context, id primitive.ObjectID, features []string) (*models.RevenueCatPlan, error) {
	const op = "services.plans.UpdatePlanFeatures"

	before, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if before == nil {
		return nil, fmt.Errorf("%s: plan %s: %w", op, id.Hex(), apperr.ErrNotFound)
	}

	if features == nil {
		features = []string{}
	}
	after, err := s.repo.UpdateFeatures(ctx, id, features)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if after == nil {
		return nil, fmt.Errorf("%s: plan %s: %w", op, id.Hex(), apperr.ErrNotFound)
	}

	_, err = s.audit.Log(ctx, models.ActionUpdate, models.EntityRevenueCatPlan, auditlog.LogOptions{
		EntityID:    id.Hex(),
		EntityName:  after.RevenueCatID,
		OldValues:   map[string]any{"features": before.Features},
		NewValues:   map[string]any{"features": after.Features},
		Description: "Updated plan features",
	})
	if err != nil {
		s.log.Warn("failed to record plan update", slog.String("id", id.Hex()), sl.Err(err))
	}

	return after, nil
}
