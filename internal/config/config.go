package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config enumerates every knob the service reads, parsed once at startup.
// A missing credential fails here rather than inside the first wizard call.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"development"`
	Port   string `env:"PORT" envDefault:"8080"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY,required"`
	GeminiTextModel  string `env:"GEMINI_TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image-preview"`

	// AssetSource picks where the default reference library lives:
	// "drive" (public Google Drive file ids) or "gcs" (bucket objects).
	AssetSource           string   `env:"ASSET_SOURCE" envDefault:"drive"`
	StorageBucket         string   `env:"STORAGE_BUCKET"`
	AssetPrefix           string   `env:"ASSET_PREFIX" envDefault:"assets/"`
	GoogleCredentialsFile string   `env:"GOOGLE_CREDENTIALS_FILE"`
	MascotFileIDs         []string `env:"MASCOT_FILE_IDS" envSeparator:"," envDefault:"1RHEuK4yhqm0baUtXUtuqzier1TRPxgii,1-SZrvhE6herzf0vdG8z7WbACnVPNObnw,1ePl3woHEKX6AM2i0WGjEGM2pWQrrsuC8"`
	ExampleFileIDs        []string `env:"EXAMPLE_FILE_IDS" envSeparator:"," envDefault:"1zIQiWeIgGHk-GFyvIonARQVeEc9qy1T9,1z0WWet93Pq3kxyo8gCiyBkQj_nQ8zssG,1cdROcQlWBdgjwyJh5u7pr9T522IT7rlO,1auRvEdH7eFyli8mYzmSss7F8YhBmphYy,1y6PgzD_y_E9nrj_xK8Mx05HEI6I5Wqjh,1roqswTUSWF1qAUox-DI6GVnK10SKMWdA"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.AssetSource != "drive" && cfg.AssetSource != "gcs" {
		return nil, fmt.Errorf("ASSET_SOURCE must be drive or gcs, got %q", cfg.AssetSource)
	}
	if cfg.AssetSource == "gcs" && cfg.StorageBucket == "" {
		return nil, fmt.Errorf("STORAGE_BUCKET is required when ASSET_SOURCE=gcs")
	}
	return &cfg, nil
}
