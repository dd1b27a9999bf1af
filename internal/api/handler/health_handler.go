package handler

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/vistoria/inspection-api/internal/api/middleware"
)

const probeTimeout = 3 * time.Second

// Probe checks one dependency.
type Probe struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	started time.Time
	probes  []Probe
	envKeys []string
	lookup  func(string) (string, bool)
}

// NewHealthHandler reports on probes and on whether each of envKeys is set.
// Values of the variables are never exposed.
func NewHealthHandler(started time.Time, envKeys []string, probes ...Probe) *HealthHandler {
	return &HealthHandler{
		started: started,
		probes:  probes,
		envKeys: envKeys,
		lookup:  os.LookupEnv,
	}
}

type livenessResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status        string                      `json:"status"`
	UptimeSeconds float64                     `json:"uptime_seconds"`
	Dependencies  map[string]dependencyStatus `json:"dependencies"`
	Environment   map[string]bool             `json:"environment"`
}

// Liveness confirms the process is serving requests.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  Envelope{data=livenessResponse}
// @Router       /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return ok(c, http.StatusOK, livenessResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.started).Seconds(),
	})
}

// Readiness pings every dependency concurrently. Probe error strings are
// only shown to a super admin.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  Envelope{data=readinessResponse}
// @Failure      503  {object}  Envelope{data=readinessResponse}
// @Router       /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	errs := make([]error, len(h.probes))
	var g errgroup.Group
	for i, p := range h.probes {
		i, p := i, p
		g.Go(func() error {
			errs[i] = p.Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	p, _ := middleware.PrincipalFrom(c)
	verbose := p.IsSuperAdmin()

	deps := make(map[string]dependencyStatus, len(h.probes))
	healthy := true
	for i, probe := range h.probes {
		if errs[i] == nil {
			deps[probe.Name] = dependencyStatus{Status: "ok"}
			continue
		}
		healthy = false
		st := dependencyStatus{Status: "unhealthy"}
		if verbose {
			st.Error = errs[i].Error()
		}
		deps[probe.Name] = st
	}

	env := make(map[string]bool, len(h.envKeys))
	for _, k := range h.envKeys {
		v, set := h.lookup(k)
		env[k] = set && v != ""
	}

	body := readinessResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(h.started).Seconds(),
		Dependencies:  deps,
		Environment:   env,
	}
	if !healthy {
		body.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, Envelope{
			Success: false,
			Data:    body,
			Error:   "Serviço indisponível",
			Code:    "SERVICE_UNAVAILABLE",
		})
	}
	return ok(c, http.StatusOK, body)
}
