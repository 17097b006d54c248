package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "trivia-quiz", cfg.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "triviaapi", cfg.Trivia.Source)
	assert.Equal(t, 10, cfg.Trivia.Limit)
	assert.Equal(t, 10*time.Second, cfg.Trivia.FetchTimeout)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTTL)
	assert.Contains(t, cfg.CORS.AllowedOrigins, "http://localhost:3000")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRIVIA_SOURCE", "opentdb")
	t.Setenv("TRIVIA_QUESTION_LIMIT", "5")
	t.Setenv("QUESTION_FETCH_TIMEOUT", "3s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://quiz.example,https://www.quiz.example")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "opentdb", cfg.Trivia.Source)
	assert.Equal(t, 5, cfg.Trivia.Limit)
	assert.Equal(t, 3*time.Second, cfg.Trivia.FetchTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"https://quiz.example", "https://www.quiz.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownSource(t *testing.T) {
	t.Setenv("TRIVIA_SOURCE", "jeopardy")
	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "TRIVIA_SOURCE")
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("QUESTION_FETCH_TIMEOUT", "soon")
	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "parse config")
}
