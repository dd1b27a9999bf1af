package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistoria/inspection-api/internal/core/domain"
)

func healthHandler(mongoErr error) *HealthHandler {
	h := NewHealthHandler(time.Now().Add(-time.Minute), []string{"JWT_SECRET", "REDIS_ADDR"},
		Probe{Name: "mongodb", Ping: func(context.Context) error { return mongoErr }},
		Probe{Name: "redis", Ping: func(context.Context) error { return nil }},
	)
	h.lookup = func(k string) (string, bool) {
		if k == "JWT_SECRET" {
			return "super-secret-value", true
		}
		return "", false
	}
	return h
}

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := jsonContext(http.MethodGet, "/health", "")

	require.NoError(t, healthHandler(nil).Liveness(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var data livenessResponse
	decode(t, rec, &data)
	assert.Equal(t, "ok", data.Status)
	assert.GreaterOrEqual(t, data.UptimeSeconds, 60.0)
}

func TestHealthHandler_Readiness_ReportsPresenceOnly(t *testing.T) {
	c, rec := jsonContext(http.MethodGet, "/health/ready", "")

	require.NoError(t, healthHandler(nil).Readiness(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var data readinessResponse
	decode(t, rec, &data)
	assert.Equal(t, "ok", data.Status)
	assert.Equal(t, map[string]bool{"JWT_SECRET": true, "REDIS_ADDR": false}, data.Environment)
	assert.NotContains(t, rec.Body.String(), "super-secret-value")
}

func TestHealthHandler_Readiness_HidesErrorsFromAnonymous(t *testing.T) {
	c, rec := jsonContext(http.MethodGet, "/health/ready", "")

	require.NoError(t, healthHandler(errors.New("server selection timeout")).Readiness(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var data readinessResponse
	env := decode(t, rec, &data)
	assert.False(t, env.Success)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Code)
	assert.Equal(t, "degraded", data.Status)
	assert.Equal(t, "unhealthy", data.Dependencies["mongodb"].Status)
	assert.Empty(t, data.Dependencies["mongodb"].Error)
	assert.Equal(t, "ok", data.Dependencies["redis"].Status)
}

func TestHealthHandler_Readiness_ShowsErrorsToSuperAdmin(t *testing.T) {
	c, rec := jsonContext(http.MethodGet, "/health/ready", "")
	root := domain.Principal{Type: domain.PrincipalUser, ID: "root", Role: domain.RoleSuperAdmin}

	require.NoError(t, healthHandler(errors.New("server selection timeout")).Readiness(as(c, root)))

	var data readinessResponse
	decode(t, rec, &data)
	assert.Equal(t, "server selection timeout", data.Dependencies["mongodb"].Error)
}
