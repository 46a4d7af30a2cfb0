package mongodb

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/migrations"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

var (
	containerOnce sync.Once
	containerURI  string
	containerErr  error
)

// newTestStorage поднимает (один раз на пакет) контейнер MongoDB и возвращает
// хранилище над отдельной базой с применёнными миграциями.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	containerOnce.Do(func() {
		var c *tcmongo.MongoDBContainer
		c, containerErr = tcmongo.Run(ctx, "mongo:7")
		if containerErr != nil {
			return
		}
		containerURI, containerErr = c.ConnectionString(ctx)
	})
	require.NoError(t, containerErr)

	dbName := "test_" + primitive.NewObjectID().Hex()
	st, err := New(ctx, config.MongoConnection{
		URI:            containerURI,
		Database:       dbName,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(st.Client, dbName, migrationsPath))

	t.Cleanup(func() {
		_ = st.DB.Drop(context.Background())
		_ = st.Close(context.Background())
	})
	return st
}

// TestDataFactory создаёт тестовые документы напрямую в коллекциях.
type TestDataFactory struct {
	st *Storage
}

func newFactory(st *Storage) *TestDataFactory {
	return &TestDataFactory{st: st}
}

// CreateUser создаёт пользователя и возвращает его _id.
func (f *TestDataFactory) CreateUser(t *testing.T, username, email string) primitive.ObjectID {
	t.Helper()
	res, err := f.st.DB.Collection(CollectionUsers).InsertOne(context.Background(), models.User{
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      "admin",
	})
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID)
}

// CreateAuditLog вставляет запись журнала с заданным временем создания.
func (f *TestDataFactory) CreateAuditLog(t *testing.T, entry models.AuditLogEntry) primitive.ObjectID {
	t.Helper()
	if entry.Action == "" {
		entry.Action = models.ActionOther
	}
	if entry.EntityType == "" {
		entry.EntityType = models.EntitySystem
	}
	res, err := f.st.DB.Collection(CollectionAuditLogs).InsertOne(context.Background(), entry)
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID)
}
