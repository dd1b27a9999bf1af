package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/api/middleware"
	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

// ClientHandler serves the client portal. Every route except register and
// login runs behind the Session middleware.
type ClientHandler struct {
	auth        ports.ClientAuthService
	inspections ports.InspectionService
	contests    ports.ContestService
}

func NewClientHandler(auth ports.ClientAuthService, inspections ports.InspectionService, contests ports.ContestService) *ClientHandler {
	return &ClientHandler{auth: auth, inspections: inspections, contests: contests}
}

// Register creates a client account.
//
// @Summary      Register a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      clientRegisterRequest  true  "Client details"
// @Success      201   {object}  Envelope{data=clientResponse}
// @Failure      400   {object}  Envelope
// @Router       /clients/register [post]
func (h *ClientHandler) Register(c echo.Context) error {
	var req clientRegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	client, err := h.auth.Register(c.Request().Context(), ports.ClientRegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Document: req.Document,
	})
	if err != nil {
		return err
	}
	return okMessage(c, http.StatusCreated, toClientResponse(client), "Cliente cadastrado com sucesso")
}

// Login opens a client session.
//
// @Summary      Client login
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  Envelope{data=clientSessionResponse}
// @Failure      401   {object}  Envelope
// @Router       /clients/login [post]
func (h *ClientHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, clientSessionResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Client:    toClientResponse(res.Client),
	})
}

// Logout ends the current session.
//
// @Summary      Client logout
// @Tags         clients
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  Envelope
// @Router       /clients/logout [post]
func (h *ClientHandler) Logout(c echo.Context) error {
	token, found := middleware.SessionTokenFrom(c)
	if !found {
		return domain.ErrTokenRequired
	}
	if err := h.auth.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, nil, "Sessão encerrada")
}

// Me returns the authenticated client.
//
// @Summary      Current client
// @Tags         clients
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  Envelope{data=clientResponse}
// @Router       /clients/me [get]
func (h *ClientHandler) Me(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	client, err := h.auth.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toClientResponse(client))
}

// Inspections lists inspections of the client's properties.
//
// @Summary      Client inspections
// @Tags         clients
// @Produce      json
// @Security     SessionAuth
// @Param        page       query     int     false  "Page"
// @Param        limit      query     int     false  "Page size"
// @Param        sortBy     query     string  false  "Sort field"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Param        status     query     string  false  "Status"
// @Success      200        {object}  Envelope
// @Router       /clients/inspections [get]
func (h *ClientHandler) Inspections(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listInspectionsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.inspections.ListForClient(c.Request().Context(), p, ports.InspectionFilter{
		Params:     req.params(ports.InspectionSpec),
		Status:     req.Status,
		PropertyID: req.PropertyID,
		Type:       req.Type,
		Scheduled:  dateRange(req.FromDate, req.ToDate),
	})
	if err != nil {
		return err
	}
	return list(c, "inspections", page, toInspectionResponse)
}

// Contests lists the client's contests.
//
// @Summary      Client contests
// @Tags         clients
// @Produce      json
// @Security     SessionAuth
// @Success      200  {object}  Envelope
// @Router       /clients/contests [get]
func (h *ClientHandler) Contests(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listContestsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.contests.List(c.Request().Context(), p, ports.ContestFilter{
		Params:       req.params(ports.ContestSpec),
		Status:       req.Status,
		InspectionID: req.InspectionID,
	})
	if err != nil {
		return err
	}
	return list(c, "contests", page, toContestResponse)
}

// CreateContest opens a contest on a finished inspection.
//
// @Summary      Open a contest
// @Tags         clients
// @Accept       json
// @Produce      json
// @Security     SessionAuth
// @Param        body  body      createContestRequest  true  "Contest"
// @Success      201   {object}  Envelope{data=contestResponse}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /clients/contests [post]
func (h *ClientHandler) CreateContest(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if !p.IsClient() {
		return domain.ErrForbidden
	}
	var req createContestRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contest, err := h.contests.Create(c.Request().Context(), p, ports.CreateContestInput{
		InspectionID: req.InspectionID,
		Reason:       strings.TrimSpace(req.Reason),
		Description:  req.Description,
	})
	if err != nil {
		return err
	}
	return okMessage(c, http.StatusCreated, toContestResponse(contest), "Contestação registrada")
}
