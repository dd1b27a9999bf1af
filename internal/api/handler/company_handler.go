package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type CompanyHandler struct {
	service ports.CompanyService
}

func NewCompanyHandler(service ports.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// List returns every tenant.
//
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page"
// @Param        limit      query     int     false  "Page size"
// @Param        sortBy     query     string  false  "Sort field"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Param        search     query     string  false  "Search name, document or email"
// @Param        status     query     string  false  "active or suspended"
// @Success      200        {object}  Envelope
// @Failure      403        {object}  Envelope
// @Router       /v1/companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listCompaniesRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.CompanyFilter{
		Params: req.params(ports.CompanySpec),
		Status: req.Status,
	})
	if err != nil {
		return err
	}
	return list(c, "companies", page, toCompanyResponse)
}

// Get returns one company.
//
// @Summary      Get company
// @Tags         companies
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Company id"
// @Success      200  {object}  Envelope{data=companyResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	company, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toCompanyResponse(company))
}

// Update changes the company profile.
//
// @Summary      Update company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Company id"
// @Param        body  body      updateCompanyRequest  true  "Fields to change"
// @Success      200   {object}  Envelope{data=companyResponse}
// @Failure      400   {object}  Envelope
// @Failure      403   {object}  Envelope
// @Router       /v1/companies/{id} [put]
func (h *CompanyHandler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req updateCompanyRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	company, err := h.service.Update(c.Request().Context(), p, c.Param("id"), ports.UpdateCompanyInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toCompanyResponse(company))
}

// SetStatus suspends or reactivates a tenant.
//
// @Summary      Change company status
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Company id"
// @Param        body  body      companyStatusRequest  true  "New status"
// @Success      200   {object}  Envelope{data=companyResponse}
// @Failure      403   {object}  Envelope
// @Router       /v1/companies/{id}/status [patch]
func (h *CompanyHandler) SetStatus(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req companyStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	company, err := h.service.SetStatus(c.Request().Context(), p, c.Param("id"), domain.CompanyStatus(req.Status))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toCompanyResponse(company))
}
