package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"whale-content-station/internal/handler"
	"whale-content-station/internal/service"
	"whale-content-station/internal/store"
)

// New wires the echo instance with middleware and every wizard route.
func New(svc *service.WizardService, assets *store.Store, allowedOrigin string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			return allowedOrigin != "" && origin == allowedOrigin, nil
		},
	}))

	wizardHandler := handler.NewWizardHandler(svc)
	assetHandler := handler.NewAssetHandler(assets)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"ok": "true"})
	})

	api := e.Group("/api")
	api.GET("/session", wizardHandler.GetSession)
	api.PATCH("/session", wizardHandler.Edit)
	api.POST("/session/submit", wizardHandler.Submit)
	api.POST("/session/regenerate", wizardHandler.Regenerate)
	api.POST("/session/back", wizardHandler.Back)
	api.POST("/session/confirm", wizardHandler.Confirm)
	api.POST("/session/generate-image", wizardHandler.GenerateImage)
	api.POST("/session/finalize", wizardHandler.Finalize)
	api.POST("/session/reset", wizardHandler.Reset)

	api.GET("/assets", assetHandler.List)
	api.POST("/assets", assetHandler.Upload)
	api.DELETE("/assets/:id", assetHandler.Delete)
	api.GET("/assets/:id/raw", assetHandler.Raw)

	api.GET("/download/image", wizardHandler.DownloadImage)
	api.GET("/download/text", wizardHandler.DownloadText)

	return e
}
