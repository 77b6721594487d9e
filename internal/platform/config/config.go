package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is centralized process configuration. Infra values live here and
// typed values are passed into builders; nothing reads the environment past
// startup.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"kvorum"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"postgres"` // postgres or sqlite
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
	SqlitePath  string `envconfig:"SQLITE_PATH" default:"kvorum.db"`

	OtpSecret  string        `envconfig:"OTP_SECRET" required:"true"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	WorkerPollInterval time.Duration `envconfig:"WORKER_POLL_INTERVAL" default:"30s"`

	SignProviderURL     string        `envconfig:"SIGN_PROVIDER_URL"`
	SignProviderToken   string        `envconfig:"SIGN_PROVIDER_TOKEN"`
	SignProviderTimeout time.Duration `envconfig:"SIGN_PROVIDER_TIMEOUT" default:"10s"`

	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	// A missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
