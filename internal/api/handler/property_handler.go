package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type PropertyHandler struct {
	service ports.PropertyService
}

func NewPropertyHandler(service ports.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// List returns the tenant's properties.
//
// @Summary      List properties
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        page           query     int     false  "Page"
// @Param        limit          query     int     false  "Page size"
// @Param        search         query     string  false  "Search name, address, city or owner"
// @Param        sortBy         query     string  false  "created_at, updated_at, name, address or city"
// @Param        sortOrder      query     string  false  "asc or desc"
// @Param        status         query     string  false  "active or inactive"
// @Param        property_type  query     string  false  "Property type"
// @Param        client_id      query     string  false  "Client id"
// @Success      200            {object}  Envelope
// @Router       /v1/properties [get]
func (h *PropertyHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listPropertiesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.PropertyFilter{
		Params:       req.params(ports.PropertySpec),
		Status:       req.Status,
		PropertyType: req.PropertyType,
		ClientID:     req.ClientID,
		City:         req.City,
	})
	if err != nil {
		return err
	}
	return list(c, "properties", page, toPropertyResponse)
}

// Create registers a property.
//
// @Summary      Create property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPropertyRequest  true  "Property"
// @Success      201   {object}  Envelope{data=propertyResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /v1/properties [post]
func (h *PropertyHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createPropertyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	prop, err := h.service.Create(c.Request().Context(), p, ports.CreatePropertyInput{
		CompanyID:    req.CompanyID,
		ClientID:     req.ClientID,
		Name:         strings.TrimSpace(req.Name),
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		State:        req.State,
		ZipCode:      req.ZipCode,
		PropertyType: domain.PropertyType(req.PropertyType),
		OwnerName:    req.OwnerName,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return okMessage(c, http.StatusCreated, toPropertyResponse(prop), "Imóvel cadastrado com sucesso")
}

// Get returns one property.
//
// @Summary      Get property
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Property id"
// @Success      200  {object}  Envelope{data=propertyResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/properties/{id} [get]
func (h *PropertyHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	prop, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toPropertyResponse(prop))
}

// Update changes a property. Absent fields are left untouched.
//
// @Summary      Update property
// @Tags         properties
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Property id"
// @Param        body  body      updatePropertyRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=propertyResponse}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /v1/properties/{id} [put]
func (h *PropertyHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updatePropertyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	prop, err := h.service.Update(c.Request().Context(), p, c.Param("id"), toUpdatePropertyInput(req))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toPropertyResponse(prop))
}

// Delete removes a property without inspections.
//
// @Summary      Delete property
// @Tags         properties
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Property id"
// @Success      200  {object}  Envelope
// @Failure      400  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /v1/properties/{id} [delete]
func (h *PropertyHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, nil, "Imóvel removido")
}
