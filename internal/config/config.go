package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Env string

const (
	EnvProd Env = "prod"
	EnvDev  Env = "dev"
)

func (e Env) IsValid() bool {
	switch e {
	case EnvProd, EnvDev:
		return true
	}
	return false
}

// SDK holds the defaults used when a client is built without explicit
// credentials.
type SDK struct {
	APIKey  string        `env:"BARIKOI_API_KEY"`
	BaseURL string        `env:"BARIKOI_BASE_URL" envDefault:"https://barikoi.xyz/v2/api"`
	Timeout time.Duration `env:"BARIKOI_TIMEOUT" envDefault:"60s"`
	// RateLimit is the number of requests per second, 0 means unlimited.
	RateLimit float64 `env:"BARIKOI_RATE_LIMIT" envDefault:"0"`
}

type Config struct {
	SDK
	APIServerHost      string        `env:"API_SERVER_HOST"`
	APIServerPort      string        `env:"API_SERVER_PORT" envDefault:"8080"`
	RedisHost          string        `env:"REDIS_HOST"`
	RedisPort          string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisEventsChannel string        `env:"REDIS_EVENTS_CHANNEL" envDefault:"barikoi:geofence:events"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	SessionTTL         time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	WatchMinMoveMeters float64       `env:"WATCH_MIN_MOVE_METERS" envDefault:"10"`
	Env                Env           `env:"ENV" envDefault:"prod"`
}

// LoadSDK reads only the SDK defaults.
func LoadSDK() (SDK, error) {
	cfg, err := env.ParseAs[SDK]()
	if err != nil {
		return SDK{}, fmt.Errorf("failed to load sdk config: %w", err)
	}
	if cfg.RateLimit < 0 {
		return SDK{}, fmt.Errorf("invalid BARIKOI_RATE_LIMIT %v (must be >= 0)", cfg.RateLimit)
	}
	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.Env.IsValid() {
		return nil, fmt.Errorf("invalid env variable (must be 'prod' or 'dev')")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("BARIKOI_API_KEY is required")
	}
	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("invalid BARIKOI_RATE_LIMIT %v (must be >= 0)", cfg.RateLimit)
	}
	if cfg.WatchMinMoveMeters < 0 {
		return nil, fmt.Errorf("invalid WATCH_MIN_MOVE_METERS %v (must be >= 0)", cfg.WatchMinMoveMeters)
	}
	return &cfg, nil
}
