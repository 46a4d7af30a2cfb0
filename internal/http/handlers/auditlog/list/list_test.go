package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) FindAll(ctx context.Context, query models.AuditLogQuery) (*models.AuditLogPage, error) {
	args := m.Called(ctx, query)
	if p := args.Get(0); p != nil {
		return p.(*models.AuditLogPage), args.Error(1)
	}
	return nil, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListHandler(t *testing.T) {
	actor := primitive.NewObjectID()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		url            string
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "без фильтров подставляются значения по умолчанию",
			url:  "/audit-logs",
			setupMock: func(m *ServiceMock) {
				m.On("FindAll", mock.Anything, models.AuditLogQuery{Page: 1, Limit: 50}).
					Return(&models.AuditLogPage{Data: []models.AuditLogEntry{}, Total: 0, Page: 1, Limit: 50}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"success":true`, `"totalPages":0`},
		},
		{
			name: "все фильтры",
			url: "/audit-logs?actorId=" + actor.Hex() +
				"&action=update&entityType=settings&entityId=global" +
				"&startDate=2024-01-01T00:00:00Z&search=site&page=2&limit=10",
			setupMock: func(m *ServiceMock) {
				m.On("FindAll", mock.Anything, mock.MatchedBy(func(q models.AuditLogQuery) bool {
					return q.ActorID != nil && *q.ActorID == actor &&
						q.Action == models.ActionUpdate &&
						q.EntityType == models.EntitySettings &&
						q.EntityID == "global" &&
						q.StartDate != nil && q.StartDate.Equal(start) &&
						q.EndDate == nil &&
						q.Search == "site" &&
						q.Page == 2 && q.Limit == 10
				})).Return(&models.AuditLogPage{
					Data:  []models.AuditLogEntry{{Action: models.ActionUpdate, EntityType: models.EntitySettings}},
					Total: 25, Page: 2, Limit: 10,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   []string{`"total":25`, `"page":2`, `"totalPages":3`, `"action":"update"`},
		},
		{
			name:           "нечисловая страница",
			url:            "/audit-logs?page=abc",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "неизвестное действие",
			url:            "/audit-logs?action=explode",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"field Action must be one of"},
		},
		{
			name:           "некорректный actorId",
			url:            "/audit-logs?actorId=123",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   []string{"must be a valid id"},
		},
		{
			name:           "лимит больше допустимого",
			url:            "/audit-logs?limit=1000",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "дата не в RFC3339",
			url:            "/audit-logs?endDate=01.02.2024",
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{"endDate must be RFC3339"},
		},
		{
			name: "ошибка хранилища",
			url:  "/audit-logs",
			setupMock: func(m *ServiceMock) {
				m.On("FindAll", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   []string{"could not list audit logs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			h := New(newNoopLogger(), svc)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))

			require.Equal(t, tt.expectedStatus, rec.Code)
			for _, s := range tt.expectedBody {
				assert.Contains(t, rec.Body.String(), s)
			}
			svc.AssertExpectations(t)
		})
	}
}
