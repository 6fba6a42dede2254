package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"whale-content-station/internal/service"
)

type WizardHandler struct {
	svc *service.WizardService
}

func NewWizardHandler(svc *service.WizardService) *WizardHandler {
	return &WizardHandler{svc: svc}
}

type submitRequest struct {
	RawContent string `json:"rawContent"`
}

type editRequest struct {
	RawContent     *string `json:"rawContent"`
	GeneratedDraft *string `json:"generatedDraft"`
	ImagePrompt    *string `json:"imagePrompt"`
}

func (h *WizardHandler) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.View())
}

func (h *WizardHandler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.RawContent != "" {
		h.svc.SetRawContent(req.RawContent)
	}
	return h.respond(c, h.svc.Submit(c.Request().Context()))
}

func (h *WizardHandler) Regenerate(c echo.Context) error {
	return h.respond(c, h.svc.RegenerateContent(c.Request().Context()))
}

func (h *WizardHandler) Back(c echo.Context) error {
	return h.respond(c, h.svc.Back())
}

func (h *WizardHandler) Confirm(c echo.Context) error {
	return h.respond(c, h.svc.ConfirmAssets())
}

func (h *WizardHandler) GenerateImage(c echo.Context) error {
	return h.respond(c, h.svc.GenerateImage(c.Request().Context()))
}

func (h *WizardHandler) Finalize(c echo.Context) error {
	return h.respond(c, h.svc.Finalize())
}

func (h *WizardHandler) Reset(c echo.Context) error {
	h.svc.Reset()
	return c.JSON(http.StatusOK, h.svc.View())
}

// Edit applies direct operator edits to the session text fields.
func (h *WizardHandler) Edit(c echo.Context) error {
	var req editRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if req.RawContent != nil {
		h.svc.SetRawContent(*req.RawContent)
	}
	if req.GeneratedDraft != nil {
		h.svc.SetDraft(*req.GeneratedDraft)
	}
	if req.ImagePrompt != nil {
		h.svc.SetImagePrompt(*req.ImagePrompt)
	}
	return c.JSON(http.StatusOK, h.svc.View())
}

// DownloadImage serves the synthesized image as an attachment.
func (h *WizardHandler) DownloadImage(c echo.Context) error {
	img := h.svc.FinalImage()
	if img == nil || len(img.Data) == 0 {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "ยังไม่มีภาพที่สร้างเสร็จ"))
	}
	mime := img.MIME
	if mime == "" {
		mime = "image/png"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="whale-image-%d.png"`, time.Now().Unix()))
	return c.Blob(http.StatusOK, mime, img.Data)
}

// DownloadText serves the caption as an attachment.
func (h *WizardHandler) DownloadText(c echo.Context) error {
	draft := h.svc.Draft()
	if draft == "" {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "ยังไม่มีเนื้อหาที่สร้างเสร็จ"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="whale-content-%d.txt"`, time.Now().Unix()))
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(draft))
}

// respond maps wizard outcomes onto HTTP. A busy rejection is a silent
// no-op: the current view comes back with 202 and no error body. Gateway
// failures are session state (the notice), so they return 200.
func (h *WizardHandler) respond(c echo.Context, err error) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, h.svc.View())
	case errors.Is(err, service.ErrBusy):
		return c.JSON(http.StatusAccepted, h.svc.View())
	case errors.Is(err, service.ErrWrongStage):
		return c.JSON(http.StatusConflict, NewErrorResponse("wrong_stage", err.Error()))
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
}
