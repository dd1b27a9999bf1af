package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/ports"
)

type SyncHandler struct {
	service ports.SyncService
}

func NewSyncHandler(service ports.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// Submit accepts a batch of offline operations from a device. Operations
// are applied asynchronously; replays of a client_op_id are reported as
// duplicates.
//
// @Summary      Submit offline operations
// @Tags         sync
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitSyncRequest  true  "Operations"
// @Success      202   {object}  Envelope
// @Failure      400   {object}  Envelope
// @Router       /v1/sync [post]
func (h *SyncHandler) Submit(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req submitSyncRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	results, err := h.service.Submit(c.Request().Context(), p, toSubmitSyncInput(req))
	if err != nil {
		return err
	}

	items := make([]syncSubmitItem, len(results))
	for i, r := range results {
		items[i] = syncSubmitItem{
			ID:         r.Operation.ID,
			ClientOpID: r.Operation.ClientOpID,
			Status:     string(r.Operation.Status),
			Duplicate:  r.Duplicate,
		}
	}
	return okMessage(c, http.StatusAccepted, map[string]any{"operations": items}, "Operações recebidas")
}

// List returns sync operations.
//
// @Summary      List sync operations
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Param        status     query     string  false  "Status"
// @Param        device_id  query     string  false  "Device id"
// @Success      200        {object}  Envelope
// @Router       /v1/sync [get]
func (h *SyncHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listSyncRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.SyncFilter{
		Params:   req.params(ports.SyncSpec),
		Status:   req.Status,
		DeviceID: req.DeviceID,
	})
	if err != nil {
		return err
	}
	return list(c, "operations", page, toSyncOperationResponse)
}

// Get returns one sync operation.
//
// @Summary      Get sync operation
// @Tags         sync
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Operation id"
// @Success      200  {object}  Envelope{data=syncOperationResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/sync/{id} [get]
func (h *SyncHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	op, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toSyncOperationResponse(op))
}
