package get

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Get(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*models.Settings), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestGetHandler(t *testing.T) {
	t.Run("настройки по умолчанию", func(t *testing.T) {
		defaults := models.DefaultSettings()
		svc := new(ServiceMock)
		svc.On("Get", mock.Anything).Return(&defaults, nil)

		rec := httptest.NewRecorder()
		New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"siteName":"`+defaults.SiteName+`"`)
		assert.NotContains(t, rec.Body.String(), `"key"`)
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Get", mock.Anything).Return(nil, errors.New("db down"))

		rec := httptest.NewRecorder()
		New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "could not load settings")
	})
}
