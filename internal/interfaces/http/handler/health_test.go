package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ikkasa/orderhub/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		expectedStatus int
	}{
		{name: "no database configured", db: nil, expectedStatus: http.StatusOK},
		{name: "database reachable", db: pingerFunc(func(context.Context) error { return nil }), expectedStatus: http.StatusOK},
		{name: "database down", db: pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, "1.2.3")
			r := gin.New()
			r.GET("/health", h.Health)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Equal(t, dto.ErrCodeInternal, decodeError(t, w).Error.Code)
				return
			}
			var resp struct {
				Data HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "ok", resp.Data.Status)
			assert.Equal(t, "1.2.3", resp.Data.Version)
			assert.NotEmpty(t, resp.Data.GoVersion)
		})
	}
}
