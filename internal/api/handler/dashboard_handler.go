package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats returns tenant-wide counters.
//
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  Envelope{data=dashboardResponse}
// @Failure      403  {object}  Envelope
// @Router       /v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	stats, err := h.service.Stats(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toDashboardResponse(stats))
}
