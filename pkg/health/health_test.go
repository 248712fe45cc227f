package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transfmt/pkg/health"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, health.StatusHealthy, resp.Status)
	})

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), health.Checks{
			"a":       func(context.Context) error { return nil },
			"storage": health.PingCheck(pinger{}),
		})
		require.NoError(t, err)
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.Len(t, resp.Checks, 2)
		assert.NotEmpty(t, resp.Checks["a"].Duration)
	})

	t.Run("failure names checks", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), health.Checks{
			"ok":      func(context.Context) error { return nil },
			"storage": health.PingCheck(pinger{err: errors.New("bucket gone")}),
			"formats": func(context.Context) error { return errors.New("broken") },
		})
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.NotErrorIs(t, err, health.ErrCheckTimeout)
		assert.Contains(t, err.Error(), "[formats storage]")
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, "bucket gone", resp.Checks["storage"].Error)
		assert.Equal(t, health.StatusHealthy, resp.Checks["ok"].Status)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond))
		require.ErrorIs(t, err, health.ErrCheckFailed)
		require.ErrorIs(t, err, health.ErrCheckTimeout)
		assert.Equal(t, health.StatusUnhealthy, resp.Checks["slow"].Status)
	})
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live?format=json", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	t.Run("healthy text", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{"a": func(context.Context) error { return nil }})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("unhealthy json", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{"storage": health.PingCheck(pinger{err: errors.New("down")})})
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp health.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, "down", resp.Checks["storage"].Error)
	})

	t.Run("unhealthy text", func(t *testing.T) {
		t.Parallel()
		h := health.ReadinessHandler(health.Checks{"x": func(context.Context) error { return errors.New("no") }})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}
