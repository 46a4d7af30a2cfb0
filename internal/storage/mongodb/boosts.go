package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

var planPopulate = Populate{
	LocalField: "revenuecatPlan",
	From:       CollectionRevenueCats,
	As:         "planDetails",
	Select:     []string{"revenuecatId", "features"},
}

// Boosts - хранилище подписок пользователей.
type Boosts struct {
	repo *Repository[models.Boost]
}

// NewBoosts создаёт хранилище подписок.
func NewBoosts(db *mongo.Database) *Boosts {
	return &Boosts{
		repo: NewRepository[models.Boost](db.Collection(CollectionBoosts), true),
	}
}

// Create сохраняет подписку.
func (s *Boosts) Create(ctx context.Context, boost models.Boost) (*models.Boost, error) {
	const op = "storage.mongodb.Boosts.Create"
	boost.Plan = nil
	res, err := s.repo.Create(ctx, boost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindOne возвращает подписку с подставленным планом или nil.
func (s *Boosts) FindOne(ctx context.Context, id primitive.ObjectID) (*models.Boost, error) {
	const op = "storage.mongodb.Boosts.FindOne"
	res, err := s.repo.FindByID(ctx, id, planPopulate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindByUser возвращает подписки пользователя от новых к старым.
func (s *Boosts) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Boost, error) {
	const op = "storage.mongodb.Boosts.FindByUser"
	res, err := s.repo.FindAll(ctx,
		bson.M{"user": userID},
		FindOptions{Sort: newestFirst},
		planPopulate,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
