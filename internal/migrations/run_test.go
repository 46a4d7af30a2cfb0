package migrations

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testDatabase = "boost_admin_test"

func getTestClient(t *testing.T) *mongo.Client {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := client.Disconnect(context.Background()); err != nil {
			t.Logf("failed to disconnect: %s", err)
		}
	})
	return client
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)
	return filepath.Join(projectRoot, "migrations")
}

func indexNames(t *testing.T, db *mongo.Database, collection string) map[string]bson.M {
	t.Helper()
	cursor, err := db.Collection(collection).Indexes().List(context.Background())
	require.NoError(t, err)
	var specs []bson.M
	require.NoError(t, cursor.All(context.Background(), &specs))

	names := make(map[string]bson.M, len(specs))
	for _, s := range specs {
		names[s["name"].(string)] = s
	}
	return names
}

func TestRunMigrations(t *testing.T) {
	client := getTestClient(t)

	err := Run(client, testDatabase, getMigrationsPath(t))
	require.NoError(t, err)

	db := client.Database(testDatabase)

	auditIdx := indexNames(t, db, "audit_logs")
	for _, name := range []string{"actor_createdAt", "entityType_entityId", "action_createdAt", "createdAt"} {
		require.Contains(t, auditIdx, name)
	}

	settingsIdx := indexNames(t, db, "settings")
	require.Contains(t, settingsIdx, "key_unique")
	require.Equal(t, true, settingsIdx["key_unique"]["unique"])

	plansIdx := indexNames(t, db, "revenuecats")
	require.Contains(t, plansIdx, "revenuecatId_unique")

	boostsIdx := indexNames(t, db, "boosts")
	require.Contains(t, boostsIdx, "user_createdAt")
}

func TestMigrationIdempotency(t *testing.T) {
	client := getTestClient(t)
	path := getMigrationsPath(t)

	require.NoError(t, Run(client, testDatabase, path))
	require.NoError(t, Run(client, testDatabase, path), "running migrations twice should not fail")
}
