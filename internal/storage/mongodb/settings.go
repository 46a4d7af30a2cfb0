package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// Settings - хранилище единственного документа настроек. Единственность
// обеспечивает уникальный индекс по key.
type Settings struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewSettings создаёт хранилище настроек.
func NewSettings(db *mongo.Database) *Settings {
	return &Settings{
		coll: db.Collection(CollectionSettings),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

var globalSettings = bson.M{"key": models.SettingsKey}

// GetOrCreate возвращает документ настроек, атомарно создавая его из defaults
// при первом обращении. Ошибка дубликата ключа при одновременном первом
// обращении повторяется один раз как обычное чтение.
func (s *Settings) GetOrCreate(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	const op = "storage.mongodb.Settings.GetOrCreate"

	now := s.now()
	onInsert := bson.M{
		"siteName":                  defaults.SiteName,
		"sessionTimeout":            defaults.SessionTimeout,
		"maxLoginAttempts":          defaults.MaxLoginAttempts,
		"require2FAForAllAdmins":    defaults.Require2FAForAllAdmins,
		"allowNewAdminRegistration": defaults.AllowNewAdminRegistration,
		"createdAt":                 now,
		"updatedAt":                 now,
	}

	var doc models.Settings
	err := s.coll.FindOneAndUpdate(ctx,
		globalSettings,
		bson.M{"$setOnInsert": onInsert},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		err = s.coll.FindOne(ctx, globalSettings).Decode(&doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

// Update применяет $set к документу настроек. Возвращает nil, если документа нет.
func (s *Settings) Update(ctx context.Context, fields map[string]any) (*models.Settings, error) {
	const op = "storage.mongodb.Settings.Update"

	set := bson.M{"updatedAt": s.now()}
	for k, v := range fields {
		set[k] = v
	}

	var doc models.Settings
	err := s.coll.FindOneAndUpdate(ctx,
		globalSettings,
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}
