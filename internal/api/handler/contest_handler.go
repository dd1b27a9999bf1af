package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type ContestHandler struct {
	service ports.ContestService
}

func NewContestHandler(service ports.ContestService) *ContestHandler {
	return &ContestHandler{service: service}
}

// List returns contests of the tenant.
//
// @Summary      List contests
// @Tags         contests
// @Produce      json
// @Security     BearerAuth
// @Param        page           query     int     false  "Page"
// @Param        limit          query     int     false  "Page size"
// @Param        sortBy         query     string  false  "Sort field"
// @Param        sortOrder      query     string  false  "asc or desc"
// @Param        status         query     string  false  "Status"
// @Param        inspection_id  query     string  false  "Inspection id"
// @Success      200            {object}  Envelope
// @Router       /v1/contests [get]
func (h *ContestHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listContestsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.ContestFilter{
		Params:       req.params(ports.ContestSpec),
		Status:       req.Status,
		InspectionID: req.InspectionID,
	})
	if err != nil {
		return err
	}
	return list(c, "contests", page, toContestResponse)
}

// Get returns one contest.
//
// @Summary      Get contest
// @Tags         contests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  Envelope{data=contestResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/contests/{id} [get]
func (h *ContestHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	contest, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toContestResponse(contest))
}

// Resolve moves a contest to review or to a decision.
//
// @Summary      Resolve contest
// @Tags         contests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Contest id"
// @Param        body  body      resolveContestRequest  true  "Decision"
// @Success      200   {object}  Envelope{data=contestResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /v1/contests/{id}/status [patch]
func (h *ContestHandler) Resolve(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req resolveContestRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.service.Resolve(c.Request().Context(), p, c.Param("id"), ports.ResolveContestInput{
		Status:   domain.ContestStatus(req.Status),
		Response: req.Response,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toContestResponse(contest))
}

// Delete removes a contest.
//
// @Summary      Delete contest
// @Tags         contests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Contest id"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Router       /v1/contests/{id} [delete]
func (h *ContestHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, nil, "Contestação removida")
}
