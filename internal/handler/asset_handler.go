package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"whale-content-station/internal/model"
	"whale-content-station/internal/store"
)

type AssetHandler struct {
	store *store.Store
}

func NewAssetHandler(store *store.Store) *AssetHandler {
	return &AssetHandler{store: store}
}

type AssetResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Data      string `json:"data"`
	URL       string `json:"url"`
	IsDefault bool   `json:"isDefault"`
}

type AssetListResponse struct {
	Assets []AssetResponse `json:"assets"`
	Total  int             `json:"total"`
	Loaded bool            `json:"loaded"`
}

func toAssetResponse(a model.Asset) AssetResponse {
	return AssetResponse{
		ID:        a.ID,
		Name:      a.Name,
		Data:      a.DataURI(),
		URL:       a.SourceURL,
		IsDefault: a.IsDefault,
	}
}

func (h *AssetHandler) List(c echo.Context) error {
	assets := h.store.List()
	out := make([]AssetResponse, 0, len(assets))
	for _, a := range assets {
		out = append(out, toAssetResponse(a))
	}
	return c.JSON(http.StatusOK, AssetListResponse{
		Assets: out,
		Total:  len(out),
		Loaded: h.store.Loaded(),
	})
}

// Upload accepts one multipart image file; the file picker on the front-end
// already restricts selection to images, so only the MIME sniff is checked
// here before the bytes reach the store.
func (h *AssetHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is required"))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot open file"))
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "cannot read file"))
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "file is not an image"))
	}

	asset := h.store.Add(fileHeader.Filename, mime, data)
	return c.JSON(http.StatusCreated, toAssetResponse(asset))
}

func (h *AssetHandler) Delete(c echo.Context) error {
	// unknown ids are a no-op by contract
	h.store.Remove(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// Raw serves the stored bytes, backing the local preview URL of uploads.
func (h *AssetHandler) Raw(c echo.Context) error {
	asset, ok := h.store.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "asset not found"))
	}
	mime := asset.MIME
	if mime == "" {
		mime = "image/png"
	}
	return c.Blob(http.StatusOK, mime, asset.Data)
}
