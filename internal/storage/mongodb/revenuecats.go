package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// RevenueCats - хранилище локальных записей о фичах планов.
type RevenueCats struct {
	repo *Repository[models.RevenueCatPlan]
}

// NewRevenueCats создаёт хранилище планов.
func NewRevenueCats(db *mongo.Database) *RevenueCats {
	return &RevenueCats{
		repo: NewRepository[models.RevenueCatPlan](db.Collection(CollectionRevenueCats), true),
	}
}

// Create сохраняет новый план.
func (s *RevenueCats) Create(ctx context.Context, plan models.RevenueCatPlan) (*models.RevenueCatPlan, error) {
	const op = "storage.mongodb.RevenueCats.Create"
	res, err := s.repo.Create(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindAll возвращает все локальные планы в порядке revenuecatId.
func (s *RevenueCats) FindAll(ctx context.Context) ([]models.RevenueCatPlan, error) {
	const op = "storage.mongodb.RevenueCats.FindAll"
	res, err := s.repo.FindAll(ctx, bson.M{}, FindOptions{
		Sort: bson.D{{Key: "revenuecatId", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// FindByID возвращает план по _id или nil.
func (s *RevenueCats) FindByID(ctx context.Context, id primitive.ObjectID) (*models.RevenueCatPlan, error) {
	const op = "storage.mongodb.RevenueCats.FindByID"
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UpdateFeatures заменяет список фич плана целиком. Возвращает nil, если плана нет.
func (s *RevenueCats) UpdateFeatures(ctx context.Context, id primitive.ObjectID, features []string) (*models.RevenueCatPlan, error) {
	const op = "storage.mongodb.RevenueCats.UpdateFeatures"
	if features == nil {
		features = []string{}
	}
	res, err := s.repo.Update(ctx, id, bson.M{"features": features})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
