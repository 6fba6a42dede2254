package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"whale-content-station/internal/ai"
	"whale-content-station/internal/config"
	"whale-content-station/internal/server"
	"whale-content-station/internal/service"
	"whale-content-station/internal/store"
)

func newLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger
}

func newFetcher(ctx context.Context, cfg *config.Config) (store.Fetcher, error) {
	if cfg.AssetSource == "gcs" {
		return store.NewBucketFetcher(ctx, cfg.StorageBucket, cfg.AssetPrefix, cfg.GoogleCredentialsFile)
	}
	return store.NewDriveFetcher(&http.Client{Timeout: 30 * time.Second}), nil
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := newLogger(cfg.AppEnv)
	ctx := context.Background()

	textClient, err := ai.NewTextClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, log)
	if err != nil {
		log.Fatal().Err(err).Msg("text client init failed")
	}
	imageClient, err := ai.NewImageClient(ai.ImageClientOptions{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiImageModel,
		Logger: log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("image client init failed")
	}
	gateway := ai.NewGeminiGateway(textClient, imageClient, log)

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("asset fetcher init failed")
	}
	groups := []store.Group{
		{Name: "mascots", IDs: cfg.MascotFileIDs},
		{Name: "examples", IDs: cfg.ExampleFileIDs},
	}
	assets := store.New(fetcher, groups, log)

	svc := service.NewWizardService(assets, gateway, log)
	e := server.New(svc, assets, cfg.AllowedOrigin, log)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- e.Start(addr)
	}()

	// Reference library loads in the background; the wizard is usable as
	// soon as the server is up, assets appear as each group completes.
	go assets.Load(ctx, func(msg string) {
		log.Info().Str("stage", "asset_load").Msg(msg)
	})

	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
