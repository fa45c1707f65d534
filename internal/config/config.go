package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the service configuration, loaded from the environment.
type Config struct {
	Port    string `envconfig:"PORT" default:"8080"`
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	// Chain indexer the ingest client pulls proposals and votes from.
	IndexerBaseURL string        `envconfig:"INDEXER_BASE_URL"`
	IndexerAPIKey  string        `envconfig:"INDEXER_API_KEY"`
	SyncInterval   time.Duration `envconfig:"SYNC_INTERVAL" default:"30m"`

	// Batch scoring pass.
	ScoringWorkers  int           `envconfig:"SCORING_WORKERS" default:"8"`
	ScoringInterval time.Duration `envconfig:"SCORING_INTERVAL" default:"1h"`

	// Rate limiting; Redis is optional.
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	IPLimitPerMin int    `envconfig:"IP_LIMIT_PER_MIN" default:"120"`

	// Response cache.
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`

	// CORS origins for the dashboard, comma separated.
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
