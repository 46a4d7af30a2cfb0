package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

func TestRepository_Lifecycle(t *testing.T) {
	st := newTestStorage(t)
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	repo := NewRepository[models.RevenueCatPlan](st.DB.Collection("repository_lifecycle"), true)
	repo.now = func() time.Time { return created }

	empty, err := repo.FindAll(ctx, bson.M{}, FindOptions{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	doc, err := repo.Create(ctx, models.RevenueCatPlan{RevenueCatID: "rc_x"})
	require.NoError(t, err)
	assert.False(t, doc.ID.IsZero())
	assert.True(t, doc.CreatedAt.Equal(created))
	assert.Equal(t, []string{}, doc.Features)

	updatedAt := created.Add(time.Hour)
	repo.now = func() time.Time { return updatedAt }

	upd, err := repo.Update(ctx, doc.ID, bson.M{"features": []string{"f1"}})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, []string{"f1"}, upd.Features)
	assert.True(t, upd.UpdatedAt.Equal(updatedAt))
	assert.True(t, upd.CreatedAt.Equal(created))

	missing, err := repo.Update(ctx, primitive.NewObjectID(), bson.M{"features": []string{}})
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	deleted, err := repo.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, doc.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	gone, err := repo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
