package mongodb

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

func TestSettings_GetOrCreateDefaults(t *testing.T) {
	st := newTestStorage(t)
	store := st.Settings()
	ctx := context.Background()

	first, err := store.GetOrCreate(ctx, models.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "Boost Admin", first.SiteName)
	assert.Equal(t, 12, first.SessionTimeout)
	assert.Equal(t, 5, first.MaxLoginAttempts)
	assert.False(t, first.Require2FAForAllAdmins)
	assert.True(t, first.AllowNewAdminRegistration)
	assert.Equal(t, models.SettingsKey, first.Key)

	second, err := store.GetOrCreate(ctx, models.Settings{SiteName: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Boost Admin", second.SiteName)

	n, err := st.DB.Collection(CollectionSettings).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSettings_GetOrCreateConcurrent(t *testing.T) {
	st := newTestStorage(t)
	store := st.Settings()
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.GetOrCreate(ctx, models.DefaultSettings())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	n, err := st.DB.Collection(CollectionSettings).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSettings_Update(t *testing.T) {
	st := newTestStorage(t)
	store := st.Settings()
	ctx := context.Background()

	missing, err := store.Update(ctx, map[string]any{"siteName": "X"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	created, err := store.GetOrCreate(ctx, models.DefaultSettings())
	require.NoError(t, err)

	updated, err := store.Update(ctx, map[string]any{"siteName": "New Name", "sessionTimeout": 24})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "New Name", updated.SiteName)
	assert.Equal(t, 24, updated.SessionTimeout)
	assert.Equal(t, 5, updated.MaxLoginAttempts)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}
