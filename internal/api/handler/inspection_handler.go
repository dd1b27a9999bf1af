package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type InspectionHandler struct {
	service ports.InspectionService
}

func NewInspectionHandler(service ports.InspectionService) *InspectionHandler {
	return &InspectionHandler{service: service}
}

// List returns inspections with inspector and property names joined.
//
// @Summary      List inspections
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        page          query     int     false  "Page"
// @Param        limit         query     int     false  "Page size"
// @Param        sortBy        query     string  false  "Sort field"
// @Param        sortOrder     query     string  false  "asc or desc"
// @Param        search        query     string  false  "Search notes"
// @Param        status        query     string  false  "Status"
// @Param        inspector_id  query     string  false  "Inspector id"
// @Param        property_id   query     string  false  "Property id"
// @Param        from_date     query     string  false  "Scheduled from (YYYY-MM-DD)"
// @Param        to_date       query     string  false  "Scheduled to (YYYY-MM-DD)"
// @Success      200           {object}  Envelope
// @Router       /v1/inspections [get]
func (h *InspectionHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listInspectionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.InspectionFilter{
		Params:      req.params(ports.InspectionSpec),
		Status:      req.Status,
		InspectorID: req.InspectorID,
		PropertyID:  req.PropertyID,
		Type:        req.Type,
		Scheduled:   dateRange(req.FromDate, req.ToDate),
	})
	if err != nil {
		return err
	}
	return list(c, "inspections", page, toInspectionResponse)
}

// Create schedules an inspection.
//
// @Summary      Create inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInspectionRequest  true  "Inspection"
// @Success      201   {object}  Envelope{data=inspectionResponse}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /v1/inspections [post]
func (h *InspectionHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createInspectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	row, err := h.service.Create(c.Request().Context(), p, ports.CreateInspectionInput{
		PropertyID:    req.PropertyID,
		InspectorID:   req.InspectorID,
		Type:          domain.InspectionType(req.Type),
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return okMessage(c, http.StatusCreated, toInspectionResponse(row), "Vistoria agendada com sucesso")
}

// Get returns one inspection.
//
// @Summary      Get inspection
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Inspection id"
// @Success      200  {object}  Envelope{data=inspectionResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/inspections/{id} [get]
func (h *InspectionHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	row, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toInspectionResponse(row))
}

// Update changes scheduling details.
//
// @Summary      Update inspection
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Inspection id"
// @Param        body  body      updateInspectionRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=inspectionResponse}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /v1/inspections/{id} [put]
func (h *InspectionHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateInspectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	row, err := h.service.Update(c.Request().Context(), p, c.Param("id"), toUpdateInspectionInput(req))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toInspectionResponse(row))
}

// Transition moves the inspection through its status machine.
//
// @Summary      Change inspection status
// @Tags         inspections
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true  "Inspection id"
// @Param        body  body      inspectionStatusRequest  true  "Target status"
// @Success      200   {object}  Envelope{data=inspectionResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /v1/inspections/{id}/status [patch]
func (h *InspectionHandler) Transition(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req inspectionStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	row, err := h.service.Transition(c.Request().Context(), p, c.Param("id"), domain.InspectionStatus(req.Status), req.Notes)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toInspectionResponse(row))
}

// Delete removes an inspection.
//
// @Summary      Delete inspection
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Inspection id"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /v1/inspections/{id} [delete]
func (h *InspectionHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, nil, "Vistoria removida")
}
