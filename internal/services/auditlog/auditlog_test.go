package auditlog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) Insert(ctx context.Context, entry models.AuditLogEntry) (*models.AuditLogEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLogEntry), args.Error(1)
}

func (m *RepoMock) FindOne(ctx context.Context, id primitive.ObjectID) (*models.AuditLogEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLogEntry), args.Error(1)
}

func (m *RepoMock) FindWithFilters(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLogPage), args.Error(1)
}

func (m *RepoMock) FindByEntity(ctx context.Context, entityType models.AuditEntityType, entityID string, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLogEntry), args.Error(1)
}

func (m *RepoMock) FindByActor(ctx context.Context, actorID primitive.ObjectID, limit int) ([]models.AuditLogEntry, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditLogEntry), args.Error(1)
}

func (m *RepoMock) DeleteOldLogs(ctx context.Context, daysToKeep int) (int64, error) {
	args := m.Called(ctx, daysToKeep)
	return args.Get(0).(int64), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

// stored имитирует ответ хранилища: присваивает id и время создания.
func stored(e models.AuditLogEntry) *models.AuditLogEntry {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	return &e
}

func TestService_Log(t *testing.T) {
	actorID := primitive.NewObjectID()
	explicitActor := primitive.NewObjectID()

	tests := []struct {
		name      string
		ctx       context.Context
		action    models.AuditAction
		entity    models.AuditEntityType
		opts      LogOptions
		check     func(t *testing.T, e models.AuditLogEntry)
		repoErr   error
		wantErr   bool
		publishes bool
	}{
		{
			name:   "минимальная запись без необязательных полей",
			ctx:    context.Background(),
			action: models.ActionLogin,
			entity: models.EntityUser,
			check: func(t *testing.T, e models.AuditLogEntry) {
				assert.Nil(t, e.ActorID)
				assert.Nil(t, e.Changes)
				assert.Nil(t, e.Metadata)
				assert.Empty(t, e.EntityID)
			},
			publishes: true,
		},
		{
			name:   "автор и метаданные из контекста",
			ctx:    WithActor(context.Background(), Actor{UserID: &actorID, IPAddress: "10.0.0.1", UserAgent: "curl"}),
			action: models.ActionUpdate,
			entity: models.EntitySettings,
			opts:   LogOptions{EntityID: "global"},
			check: func(t *testing.T, e models.AuditLogEntry) {
				require.NotNil(t, e.ActorID)
				assert.Equal(t, actorID, *e.ActorID)
				require.NotNil(t, e.Metadata)
				assert.Equal(t, "10.0.0.1", e.Metadata.IPAddress)
				assert.Equal(t, "curl", e.Metadata.UserAgent)
			},
			publishes: true,
		},
		{
			name:   "явный автор важнее контекста",
			ctx:    WithActor(context.Background(), Actor{UserID: &actorID}),
			action: models.ActionDelete,
			entity: models.EntityBoost,
			opts:   LogOptions{ActorID: &explicitActor},
			check: func(t *testing.T, e models.AuditLogEntry) {
				assert.Equal(t, explicitActor, *e.ActorID)
			},
			publishes: true,
		},
		{
			name:   "системная запись не берёт автора из контекста",
			ctx:    WithActor(context.Background(), Actor{UserID: &actorID}),
			action: models.ActionDelete,
			entity: models.EntityAuditLog,
			opts:   LogOptions{IsSystemGenerated: true},
			check: func(t *testing.T, e models.AuditLogEntry) {
				assert.Nil(t, e.ActorID)
				assert.True(t, e.IsSystemGenerated)
			},
			publishes: true,
		},
		{
			name:   "изменения вычисляются по старым и новым значениям",
			ctx:    context.Background(),
			action: models.ActionUpdate,
			entity: models.EntitySettings,
			opts: LogOptions{
				OldValues: map[string]any{"siteName": "A", "sessionTimeout": 12},
				NewValues: map[string]any{"siteName": "B", "sessionTimeout": 12},
			},
			check: func(t *testing.T, e models.AuditLogEntry) {
				assert.Equal(t, map[string]models.FieldChange{
					"siteName": {Old: "A", New: "B"},
				}, e.Changes)
			},
			publishes: true,
		},
		{
			name:    "ошибка хранилища",
			ctx:     context.Background(),
			action:  models.ActionCreate,
			entity:  models.EntityPost,
			repoErr: errors.New("db down"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			pub := new(PublisherMock)

			var inserted models.AuditLogEntry
			call := repo.On("Insert", mock.Anything, mock.AnythingOfType("models.AuditLogEntry")).Once()
			if tt.repoErr != nil {
				call.Return(nil, tt.repoErr)
			} else {
				call.Run(func(args mock.Arguments) {
					inserted = args.Get(1).(models.AuditLogEntry)
				}).Return(stored(models.AuditLogEntry{Action: tt.action, EntityType: tt.entity}), nil)
			}
			if tt.publishes {
				pub.On("Publish", mock.Anything, RoutingKey(tt.entity, tt.action), mock.AnythingOfType("auditlog.Event")).
					Return(nil).Once()
			}

			svc := New(repo, pub, newNoopLogger())
			got, err := svc.Log(tt.ctx, tt.action, tt.entity, tt.opts)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.False(t, got.ID.IsZero())
			assert.Equal(t, tt.action, inserted.Action)
			assert.Equal(t, tt.entity, inserted.EntityType)
			if tt.check != nil {
				tt.check(t, inserted)
			}
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_LogPublishFailureIsIgnored(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)

	repo.On("Insert", mock.Anything, mock.Anything).
		Return(stored(models.AuditLogEntry{Action: models.ActionUpdate, EntityType: models.EntitySettings}), nil)
	pub.On("Publish", mock.Anything, "audit.settings.update", mock.Anything).Return(errors.New("broker down"))

	svc := New(repo, pub, newNoopLogger())
	got, err := svc.Log(context.Background(), models.ActionUpdate, models.EntitySettings, LogOptions{})
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestService_LogWithoutPublisher(t *testing.T) {
	repo := new(RepoMock)
	repo.On("Insert", mock.Anything, mock.Anything).
		Return(stored(models.AuditLogEntry{Action: models.ActionView, EntityType: models.EntityPost}), nil)

	svc := New(repo, nil, newNoopLogger())
	_, err := svc.Log(context.Background(), models.ActionView, models.EntityPost, LogOptions{})
	require.NoError(t, err)
}

func TestService_FindAllNormalizesPaging(t *testing.T) {
	repo := new(RepoMock)
	page := &models.AuditLogPage{Data: []models.AuditLogEntry{}, Page: 1, Limit: 50}
	repo.On("FindWithFilters", mock.Anything, models.AuditLogQuery{
		Action: models.ActionUpdate,
		Page:   models.DefaultAuditPage,
		Limit:  models.DefaultAuditLimit,
	}).Return(page, nil).Once()

	svc := New(repo, nil, newNoopLogger())
	got, err := svc.FindAll(context.Background(), models.AuditLogQuery{Action: models.ActionUpdate})
	require.NoError(t, err)
	assert.Same(t, page, got)
	repo.AssertExpectations(t)
}

func TestService_FindOne(t *testing.T) {
	id := primitive.NewObjectID()

	t.Run("найдена", func(t *testing.T) {
		repo := new(RepoMock)
		entry := &models.AuditLogEntry{ID: id}
		repo.On("FindOne", mock.Anything, id).Return(entry, nil)

		got, err := New(repo, nil, newNoopLogger()).FindOne(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("не найдена", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindOne", mock.Anything, id).Return(nil, nil)

		got, err := New(repo, nil, newNoopLogger()).FindOne(context.Background(), id)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("FindOne", mock.Anything, id).Return(nil, errors.New("db down"))

		_, err := New(repo, nil, newNoopLogger()).FindOne(context.Background(), id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestService_FindByEntityAndUser(t *testing.T) {
	repo := new(RepoMock)
	user := primitive.NewObjectID()

	repo.On("FindByEntity", mock.Anything, models.EntityBoost, "b1", MaxEntityLogs).
		Return([]models.AuditLogEntry{{EntityID: "b1"}}, nil).Once()
	repo.On("FindByActor", mock.Anything, user, DefaultUserLogs).
		Return([]models.AuditLogEntry{}, nil).Once()
	repo.On("FindByActor", mock.Anything, user, 10).
		Return([]models.AuditLogEntry{}, nil).Once()

	svc := New(repo, nil, newNoopLogger())

	byEntity, err := svc.FindByEntity(context.Background(), models.EntityBoost, "b1")
	require.NoError(t, err)
	assert.Len(t, byEntity, 1)

	_, err = svc.FindByUser(context.Background(), user, 0)
	require.NoError(t, err)
	_, err = svc.FindByUser(context.Background(), user, 10)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestService_DeleteOldLogs(t *testing.T) {
	t.Run("удаляет", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteOldLogs", mock.Anything, 90).Return(int64(7), nil)

		deleted, err := New(repo, nil, newNoopLogger()).DeleteOldLogs(context.Background(), 90)
		require.NoError(t, err)
		assert.Equal(t, int64(7), deleted)
	})

	t.Run("отрицательный срок", func(t *testing.T) {
		repo := new(RepoMock)
		_, err := New(repo, nil, newNoopLogger()).DeleteOldLogs(context.Background(), -5)
		assert.ErrorIs(t, err, apperr.ErrValidation)
		repo.AssertNotCalled(t, "DeleteOldLogs", mock.Anything, mock.Anything)
	})

	t.Run("срок больше допустимого", func(t *testing.T) {
		repo := new(RepoMock)
		svc := New(repo, nil, newNoopLogger())
		for _, days := range []int{models.MaxRetentionDays + 1, 106752, 200000} {
			_, err := svc.DeleteOldLogs(context.Background(), days)
			assert.ErrorIs(t, err, apperr.ErrValidation, "days=%d", days)
		}
		repo.AssertNotCalled(t, "DeleteOldLogs", mock.Anything, mock.Anything)
	})

	t.Run("граница допустима", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteOldLogs", mock.Anything, models.MaxRetentionDays).Return(int64(0), nil)

		_, err := New(repo, nil, newNoopLogger()).DeleteOldLogs(context.Background(), models.MaxRetentionDays)
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
