// Package mongodb реализует хранилище данных на основе MongoDB: обобщённый
// репозиторий документов и хранилища отдельных коллекций (журнал аудита,
// настройки, планы RevenueCat, подписки).
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/magabrotheeeer/boost-admin/internal/config"
)

// Имена коллекций.
const (
	CollectionAuditLogs   = "audit_logs"
	CollectionSettings    = "settings"
	CollectionRevenueCats = "revenuecats"
	CollectionBoosts      = "boosts"
	CollectionUsers       = "users"
)

// Storage инкапсулирует клиент MongoDB и рабочую базу данных.
type Storage struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// New подключается к MongoDB и проверяет соединение.
func New(ctx context.Context, cfg config.MongoConnection) (*Storage, error) {
	const op = "storage.mongodb.New"

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		Client: client,
		DB:     client.Database(cfg.Database),
	}, nil
}

// Close закрывает соединение с MongoDB.
func (s *Storage) Close(ctx context.Context) error {
	const op = "storage.mongodb.Close"
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AuditLogs возвращает хранилище журнала аудита.
func (s *Storage) AuditLogs() *AuditLogs {
	return NewAuditLogs(s.DB)
}

// Settings возвращает хранилище настроек.
func (s *Storage) Settings() *Settings {
	return NewSettings(s.DB)
}

// RevenueCats возвращает хранилище локальных планов.
func (s *Storage) RevenueCats() *RevenueCats {
	return NewRevenueCats(s.DB)
}

// Boosts возвращает хранилище подписок.
func (s *Storage) Boosts() *Boosts {
	return NewBoosts(s.DB)
}
