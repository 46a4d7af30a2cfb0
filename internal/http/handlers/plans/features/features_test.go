package features

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/magabrotheeeer/boost-admin/internal/lib/apperr"
	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) UpdatePlanFeatures(ctx context.Context, id primitive.ObjectID, features []string) (*models.RevenueCatPlan, error) {
	args := m.Called(ctx, id, features)
	if p := args.Get(0); p != nil {
		return p.(*models.RevenueCatPlan), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestFeaturesHandler(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name           string
		url            string
		body           string
		setupMock      func(m *ServiceMock)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "новый список возможностей",
			url:  "/plans/" + id.Hex() + "/features",
			body: `{"features":["priority","badge"]}`,
			setupMock: func(m *ServiceMock) {
				m.On("UpdatePlanFeatures", mock.Anything, id, []string{"priority", "badge"}).
					Return(&models.RevenueCatPlan{ID: id, Features: []string{"priority", "badge"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"features":["priority","badge"]`,
		},
		{
			name: "пустой список допустим",
			url:  "/plans/" + id.Hex() + "/features",
			body: `{"features":[]}`,
			setupMock: func(m *ServiceMock) {
				m.On("UpdatePlanFeatures", mock.Anything, id, []string{}).
					Return(&models.RevenueCatPlan{ID: id, Features: []string{}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"features":[]`,
		},
		{
			name:           "поле features отсутствует",
			url:            "/plans/" + id.Hex() + "/features",
			body:           `{}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "field Features is a required field",
		},
		{
			name:           "пустая строка в списке",
			url:            "/plans/" + id.Hex() + "/features",
			body:           `{"features":["ok",""]}`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "битый JSON",
			url:            "/plans/" + id.Hex() + "/features",
			body:           `["a"`,
			setupMock:      func(_ *ServiceMock) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name: "тариф не найден",
			url:  "/plans/" + id.Hex() + "/features",
			body: `{"features":["a"]}`,
			setupMock: func(m *ServiceMock) {
				m.On("UpdatePlanFeatures", mock.Anything, id, []string{"a"}).
					Return(nil, fmt.Errorf("plans.UpdatePlanFeatures: %w", apperr.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "plan not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			r := chi.NewRouter()
			r.Put("/plans/{id}/features", New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).ServeHTTP)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, tt.url, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}
