package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fixedChecker struct {
	status Status
	calls  atomic.Int32
}

func (f *fixedChecker) Check(context.Context) Check {
	f.calls.Add(1)
	return Check{Status: f.status, LastChecked: time.Now()}
}

type fixedBreaker gobreaker.State

func (b fixedBreaker) State() gobreaker.State { return gobreaker.State(b) }

func TestHealthCheck_Check_AggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		expected Status
	}{
		{"no checkers", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New("1.0.0", zap.NewNop())
			for i, status := range tt.statuses {
				hc.Register(string(rune('a'+i)), &fixedChecker{status: status})
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tt.expected, response.Status)
			assert.Len(t, response.Checks, len(tt.statuses))
			assert.Equal(t, "1.0.0", response.Version)
		})
	}
}

func TestHealthCheck_Check_UsesCache(t *testing.T) {
	hc := New("1.0.0", zap.NewNop())
	checker := &fixedChecker{status: StatusHealthy}
	hc.Register("db", checker)

	hc.Check(context.Background())
	hc.Check(context.Background())
	assert.Equal(t, int32(1), checker.calls.Load())

	hc.SetCacheTTL(0)
	hc.Check(context.Background())
	assert.Equal(t, int32(2), checker.calls.Load())
}

func TestReadinessHandler(t *testing.T) {
	t.Run("DegradedIsStillReady", func(t *testing.T) {
		hc := New("1.0.0", zap.NewNop())
		hc.Register("redis", &fixedChecker{status: StatusDegraded})

		rec := httptest.NewRecorder()
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnhealthyIsNotReady", func(t *testing.T) {
		hc := New("1.0.0", zap.NewNop())
		hc.Register("database", &fixedChecker{status: StatusUnhealthy})

		rec := httptest.NewRecorder()
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ShutdownDrains", func(t *testing.T) {
		hc := New("1.0.0", zap.NewNop())
		hc.PrepareShutdown()

		rec := httptest.NewRecorder()
		hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandler_RendersChecks(t *testing.T) {
	hc := New("2.0.0", zap.NewNop())
	hc.Register("cache", &fixedChecker{status: StatusHealthy})

	rec := httptest.NewRecorder()
	hc.Handler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "total_duration_ms")
	checks := body["checks"].([]interface{})
	require.Len(t, checks, 1)
	assert.Equal(t, "cache", checks[0].(map[string]interface{})["name"])
}

func TestDatabaseChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	check := NewDatabaseChecker(sqlDB).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)

	require.NoError(t, sqlDB.Close())
	check = NewDatabaseChecker(sqlDB).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestRedisChecker_UnreachableIsDegraded(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	check := NewRedisChecker(client).Check(context.Background())

	assert.Equal(t, StatusDegraded, check.Status)
}

func TestBreakerChecker(t *testing.T) {
	assert.Equal(t, StatusHealthy, NewBreakerChecker(fixedBreaker(gobreaker.StateClosed)).Check(context.Background()).Status)

	open := NewBreakerChecker(fixedBreaker(gobreaker.StateOpen)).Check(context.Background())
	assert.Equal(t, StatusDegraded, open.Status)
	assert.Equal(t, "circuit breaker is open", open.Message)
}
