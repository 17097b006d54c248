package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"trivia-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Trivia   Trivia
	Redis    Redis
	Sessions Sessions
	CORS     CORS
}

// Trivia selects and tunes the question upstream.
type Trivia struct {
	Source       string        `env:"TRIVIA_SOURCE" envDefault:"triviaapi"`
	TriviaAPIURL string        `env:"TRIVIA_API_URL" envDefault:"https://the-trivia-api.com/v2"`
	APIKey       string        `env:"TRIVIA_API_KEY"`
	OpenTDBURL   string        `env:"OPENTDB_URL" envDefault:"https://opentdb.com"`
	Limit        int           `env:"TRIVIA_QUESTION_LIMIT" envDefault:"10"`
	Category     string        `env:"TRIVIA_CATEGORY"`
	Difficulty   string        `env:"TRIVIA_DIFFICULTY"`
	FetchTimeout time.Duration `env:"QUESTION_FETCH_TIMEOUT" envDefault:"10s"`
}

// Redis holds the optional question-set cache. An empty address disables it.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	PoolSize int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	CacheTTL time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"30s"`
}

// Sessions governs the in-memory session registry.
type Sessions struct {
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	MaxSessions   int           `env:"SESSION_MAX" envDefault:"10000"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: false}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the services cannot run with.
func (c *App) Validate() error {
	switch c.Trivia.Source {
	case "triviaapi", "opentdb":
	default:
		return fmt.Errorf("TRIVIA_SOURCE must be triviaapi or opentdb, got %q", c.Trivia.Source)
	}
	if c.Trivia.Limit < 0 {
		return fmt.Errorf("TRIVIA_QUESTION_LIMIT must not be negative")
	}
	if c.Trivia.FetchTimeout < 0 {
		return fmt.Errorf("QUESTION_FETCH_TIMEOUT must not be negative")
	}
	if c.Sessions.MaxSessions <= 0 {
		return fmt.Errorf("SESSION_MAX must be positive")
	}
	return nil
}
