// internal/handlers/health_test.go
package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/flowershop-pos/internal/handlers"
	"github.com/ammerola/flowershop-pos/internal/pkg/config"
	"github.com/ammerola/flowershop-pos/test/helpers"
)

type fakeDatabase struct {
	pingErr error
}

func (f *fakeDatabase) Ping(context.Context) error { return f.pingErr }

func (f *fakeDatabase) Health(context.Context) map[string]interface{} {
	return map[string]interface{}{"total_conns": 1}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name        string
		dbErr       error
		stopRedis   bool
		wantStatus  int
		wantOverall string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantOverall: "healthy"},
		{name: "database_down", dbErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantOverall: "unhealthy"},
		{name: "redis_down", stopRedis: true, wantStatus: http.StatusServiceUnavailable, wantOverall: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
			t.Cleanup(func() { client.Close() })
			if tt.stopRedis {
				mr.Close()
			}

			handler := handlers.NewHealthHandler(&fakeDatabase{pingErr: tt.dbErr}, client, nil,
				config.AppConfig{Version: "1.2.3", Environment: "test"}, helpers.TestLogger())

			mux := http.NewServeMux()
			handlers.RegisterRoutes(mux, handlers.Handlers{Health: handler})

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.wantStatus, w.Code)

			var status handlers.HealthStatus
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
			assert.Equal(t, tt.wantOverall, status.Status)
			assert.Equal(t, "1.2.3", status.Version)
			assert.Contains(t, status.Services, "database")
			assert.Contains(t, status.Services, "redis")
			assert.NotContains(t, status.Services, "asynq")

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/live", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}
