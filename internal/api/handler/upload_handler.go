package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/core/ports"
)

type UploadHandler struct {
	service ports.UploadService
}

func NewUploadHandler(service ports.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// Create stores a batch of files sent as multipart "files" or "files[]".
//
// @Summary      Upload files
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        files        formData  file    true   "Files"
// @Param        upload_type  formData  string  true   "inspection, property, contest, document or avatar"
// @Param        related_id   formData  string  false  "Related entity id"
// @Param        description  formData  string  false  "Description"
// @Success      201          {object}  Envelope
// @Failure      400          {object}  Envelope
// @Failure      413          {object}  Envelope
// @Router       /v1/uploads [post]
func (h *UploadHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req createUploadRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.ErrNoFiles.Wrap(err)
	}
	headers := append(form.File["files"], form.File["files[]"]...)

	uploads, err := h.service.Create(c.Request().Context(), p, ports.CreateUploadInput{
		UploadType:  domain.UploadType(req.UploadType),
		RelatedID:   req.RelatedID,
		Description: req.Description,
		Files:       toFileInputs(headers),
	})
	if err != nil {
		return err
	}

	out := make([]uploadResponse, len(uploads))
	for i, u := range uploads {
		out[i] = toUploadResponse(u)
	}
	return okMessage(c, http.StatusCreated, map[string]any{"uploads": out},
		fmt.Sprintf("%d arquivo(s) enviado(s)", len(out)))
}

func toFileInputs(headers []*multipart.FileHeader) []ports.FileInput {
	files := make([]ports.FileInput, len(headers))
	for i, fh := range headers {
		fh := fh
		files[i] = ports.FileInput{
			FileName: fh.Filename,
			Size:     fh.Size,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		}
	}
	return files
}

// List returns upload metadata.
//
// @Summary      List uploads
// @Tags         uploads
// @Produce      json
// @Security     BearerAuth
// @Param        page         query     int     false  "Page"
// @Param        limit        query     int     false  "Page size"
// @Param        sortBy       query     string  false  "Sort field"
// @Param        sortOrder    query     string  false  "asc or desc"
// @Param        upload_type  query     string  false  "Upload type"
// @Param        related_id   query     string  false  "Related entity id"
// @Success      200          {object}  Envelope
// @Router       /v1/uploads [get]
func (h *UploadHandler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req listUploadsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := h.service.List(c.Request().Context(), p, ports.UploadFilter{
		Params:     req.params(ports.UploadSpec),
		UploadType: req.UploadType,
		RelatedID:  req.RelatedID,
	})
	if err != nil {
		return err
	}
	return list(c, "uploads", page, toUploadResponse)
}

// Get returns upload metadata.
//
// @Summary      Get upload
// @Tags         uploads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Upload id"
// @Success      200  {object}  Envelope{data=uploadResponse}
// @Failure      404  {object}  Envelope
// @Router       /v1/uploads/{id} [get]
func (h *UploadHandler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.service.Get(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, toUploadResponse(u))
}

// Download streams the stored file.
//
// @Summary      Download upload
// @Tags         uploads
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id   path  string  true  "Upload id"
// @Success      200
// @Failure      404  {object}  Envelope
// @Router       /v1/uploads/{id}/download [get]
func (h *UploadHandler) Download(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, body, err := h.service.Open(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		return err
	}
	defer body.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", u.FileName))
	res.Header().Set(echo.HeaderContentLength, strconv.FormatInt(u.Size, 10))
	return c.Stream(http.StatusOK, u.ContentType, body)
}

// Delete removes the metadata and the stored file.
//
// @Summary      Delete upload
// @Tags         uploads
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Upload id"
// @Success      200  {object}  Envelope
// @Failure      403  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /v1/uploads/{id} [delete]
func (h *UploadHandler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, c.Param("id")); err != nil {
		return err
	}
	return okMessage(c, http.StatusOK, nil, "Arquivo removido")
}
