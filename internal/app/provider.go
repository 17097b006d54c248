package app

import (
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/config"
	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/question/external"
)

// Provider is the question source assembled from configuration. Redis is nil
// when the cache is disabled; callers own closing it.
type Provider struct {
	question.Provider
	Redis *redis.Client
}

// NewProvider builds the upstream service and wraps it with the Redis cache
// when REDIS_ADDR is set. observer may be nil.
func NewProvider(cfg *config.App, observer question.FetchObserver, logger zerolog.Logger) *Provider {
	httpClient := &http.Client{Timeout: cfg.Trivia.FetchTimeout}
	opts := question.ServiceOptions{
		Source:     cfg.Trivia.Source,
		Limit:      cfg.Trivia.Limit,
		Category:   cfg.Trivia.Category,
		Difficulty: cfg.Trivia.Difficulty,
		Observer:   observer,
	}
	svc := question.NewService(
		external.NewOpenTDBClient(cfg.Trivia.OpenTDBURL, httpClient),
		external.NewTriviaAPIClient(cfg.Trivia.TriviaAPIURL, cfg.Trivia.APIKey, httpClient),
		opts,
		logger,
	)

	if cfg.Redis.Addr == "" {
		logger.Info().Str("source", svc.Source()).Msg("question cache disabled")
		return &Provider{Provider: svc}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	logger.Info().Str("source", svc.Source()).Str("redis_addr", cfg.Redis.Addr).Msg("question cache enabled")
	return &Provider{
		Provider: question.NewCachedProvider(svc, client, question.CacheKey(opts), cfg.Redis.CacheTTL, logger),
		Redis:    client,
	}
}

// Close releases the Redis client, if any.
func (p *Provider) Close() error {
	if p.Redis == nil {
		return nil
	}
	return p.Redis.Close()
}
