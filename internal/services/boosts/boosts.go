// Package boosts - чтение подписок пользователей.
package boosts

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// Repository описывает хранилище подписок.
type Repository interface {
	FindOne(ctx context.Context, id primitive.ObjectID) (*models.Boost, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Boost, error)
}

// Service - сервис подписок.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создаёт сервис подписок.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// FindByUser возвращает подписки пользователя от новых к старым.
func (s *Service) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Boost, error) {
	const op = "services.boosts.FindByUser"
	res, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("boosts found", slog.String("user", userID.Hex()), slog.Int("count", len(res)))
	return res, nil
}

// FindOne возвращает подписку; apperr.ErrNotFound, если её нет.
func (s *Service) FindOne(ctx context.Context, id primitive.ObjectID) (*models.Boost, error) {
	const op = "services.boosts.FindOne"
	res, err := s.repo.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%s: boost %s: %w", op, id.Hex(), apperr.ErrNotFound)
	}
	return res, nil
}
