package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	*httptest.Server
	hits atomic.Int32
}

func newBackend(t *testing.T, fn http.HandlerFunc) *backend {
	t.Helper()
	b := &backend{}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		fn(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func propertyHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "prop-1", "name": name},
		})
	}
}

func failing(status int, code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{"success": false, "error": "falhou", "code": code})
	}
}

func newClient(t *testing.T, primary, secondary string) *Client {
	t.Helper()
	c, err := New(Options{
		PrimaryURL:   primary,
		SecondaryURL: secondary,
		Token:        "tok",
		Timeout:      2 * time.Second,
		TripAfter:    2,
		OpenTimeout:  time.Minute,
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	return c
}

func TestClient_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := newBackend(t, propertyHandler("primary"))
	secondary := newBackend(t, propertyHandler("secondary"))
	c := newClient(t, primary.URL, secondary.URL)

	var out Property
	tier, err := c.do(context.Background(), request{method: http.MethodGet, path: "/v1/properties/prop-1"}, &out)
	require.NoError(t, err)
	assert.Equal(t, TierPrimary, tier)
	assert.Equal(t, "primary", out.Name)
	assert.Zero(t, secondary.hits.Load())
}

func TestClient_FallsBackOnServerError(t *testing.T) {
	primary := newBackend(t, failing(http.StatusBadGateway, "UPSTREAM"))
	secondary := newBackend(t, propertyHandler("secondary"))
	c := newClient(t, primary.URL, secondary.URL)

	p, err := c.GetProperty(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "secondary", p.Name)
	assert.EqualValues(t, 1, primary.hits.Load())
	assert.EqualValues(t, 1, secondary.hits.Load())
}

func TestClient_FallsBackOnTransportError(t *testing.T) {
	primary := newBackend(t, propertyHandler("primary"))
	primary.Close()
	secondary := newBackend(t, propertyHandler("secondary"))
	c := newClient(t, primary.URL, secondary.URL)

	p, err := c.GetProperty(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, "secondary", p.Name)
}

func TestClient_DoesNotFallBackOnClientError(t *testing.T) {
	primary := newBackend(t, failing(http.StatusNotFound, "PROPERTY_NOT_FOUND"))
	secondary := newBackend(t, propertyHandler("secondary"))
	c := newClient(t, primary.URL, secondary.URL)

	_, err := c.GetProperty(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "PROPERTY_NOT_FOUND", apiErr.Code)
	assert.Equal(t, TierPrimary, apiErr.Tier)
	assert.Zero(t, secondary.hits.Load())
}

func TestClient_OpenBreakerSkipsPrimary(t *testing.T) {
	primary := newBackend(t, failing(http.StatusInternalServerError, "INTERNAL_ERROR"))
	secondary := newBackend(t, propertyHandler("secondary"))
	c := newClient(t, primary.URL, secondary.URL)

	for i := 0; i < 5; i++ {
		_, err := c.GetProperty(context.Background(), "prop-1")
		require.NoError(t, err)
	}
	assert.EqualValues(t, 2, primary.hits.Load())
	assert.EqualValues(t, 5, secondary.hits.Load())
}

func TestClient_ReturnsPrimaryErrorWithoutSecondary(t *testing.T) {
	primary := newBackend(t, failing(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"))
	c := newClient(t, primary.URL, "")

	_, err := c.GetInspection(context.Background(), "insp-1")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestClient_PushSync(t *testing.T) {
	primary := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sync", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body struct {
			DeviceID   string          `json:"device_id"`
			Operations []SyncOperation `json:"operations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tablet-7", body.DeviceID)
		require.Len(t, body.Operations, 1)

		writeJSON(w, http.StatusAccepted, map[string]any{
			"success": true,
			"data": map[string]any{"operations": []map[string]any{
				{"id": "sync-1", "client_op_id": "op-1", "status": "pending", "duplicate": false},
			}},
		})
	})
	c := newClient(t, primary.URL, "")

	receipts, err := c.PushSync(context.Background(), "tablet-7", []SyncOperation{{
		ClientOpID: "op-1", Entity: "inspection", EntityID: "insp-1", Action: "transition",
		Payload: map[string]any{"status": "completed"},
	}})
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, "sync-1", receipts[0].ID)
}

func TestClient_ListInspectionsSendsFilters(t *testing.T) {
	primary := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "pending", q.Get("status"))
		assert.Equal(t, "scheduled_date", q.Get("sortBy"))
		assert.Equal(t, "asc", q.Get("sortOrder"))
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"inspections": []map[string]any{{"id": "insp-1", "status": "pending"}},
				"pagination":  map[string]any{"page": 2, "limit": 20, "total": 21, "pages": 2},
			},
		})
	})
	c := newClient(t, primary.URL, "")

	page, err := c.ListInspections(context.Background(), ListOptions{Page: 2, SortBy: "scheduled_date", SortOrder: "asc", Filters: map[string]string{"status": "pending"}})
	require.NoError(t, err)
	require.Len(t, page.Inspections, 1)
	assert.Equal(t, 2, page.Pagination.Pages)
}

func TestNew_RequiresBackend(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoBackend)
}
