package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/trivia-quiz/internal/config"
	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
	"github.com/gokatarajesh/trivia-quiz/internal/server"
)

const triviaPayload = `[
	{"id":"q1","category":"science","question":{"text":"Water boils at?"},"difficulty":"easy","type":"text_choice","correctAnswer":"100C","incorrectAnswers":["50C","80C","120C"]},
	{"id":"q2","category":"history","question":{"text":"First moon landing?"},"difficulty":"easy","type":"text_choice","correctAnswer":"1969","incorrectAnswers":["1959","1979","1989"]}
]`

func upstream(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(triviaPayload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func loadConfig(t *testing.T, triviaURL string) *config.App {
	t.Helper()
	t.Setenv("TRIVIA_API_URL", triviaURL)
	t.Setenv("HTTP_ADDR", "127.0.0.1:0")
	t.Setenv("GRACEFUL_SHUTDOWN_SECONDS", "2s")
	t.Setenv("REDIS_ADDR", "")
	cfg, err := config.Load(context.Background())
	require.NoError(t, err)
	return cfg
}

func TestApplicationServesSessions(t *testing.T) {
	var hits int32
	cfg := loadConfig(t, upstream(t, &hits).URL)
	reg := prometheus.NewRegistry()
	logger := zerolog.Nop()

	a, err := New(context.Background(), cfg, Options{Registerer: reg, Gatherer: reg, Logger: &logger})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()
	defer a.sessions.CloseAll()

	resp, err := http.Post(srv.URL+"/v1/sessions", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created server.SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	a.sessions.Wait()

	getResp, err := http.Get(srv.URL + "/v1/sessions/" + created.ID)
	require.NoError(t, err)
	defer getResp.Body.Close()
	var got server.SessionResponse
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	require.Equal(t, quiz.StateReady, got.View.State)
	assert.Equal(t, "Water boils at?", got.View.Question.Text)
	assert.Equal(t, 2, got.View.Question.Total)
	assert.Len(t, got.View.Question.Options, 4)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestApplicationRunStopsOnContextCancel(t *testing.T) {
	var hits int32
	cfg := loadConfig(t, upstream(t, &hits).URL)
	reg := prometheus.NewRegistry()
	logger := zerolog.Nop()

	a, err := New(context.Background(), cfg, Options{Registerer: reg, Gatherer: reg, Logger: &logger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewProviderUsesRedisCache(t *testing.T) {
	var hits int32
	cfg := loadConfig(t, upstream(t, &hits).URL)
	mr := miniredis.RunT(t)
	cfg.Redis.Addr = mr.Addr()

	p := NewProvider(cfg, nil, zerolog.Nop())
	defer p.Close()
	require.NotNil(t, p.Redis)
	_, cached := p.Provider.(*question.CachedProvider)
	require.True(t, cached)

	for i := 0; i < 3; i++ {
		set, err := p.Fetch(context.Background())
		require.NoError(t, err)
		assert.Len(t, set, 2)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "later fetches are served from redis")
	assert.True(t, mr.Exists(question.CacheKey(question.ServiceOptions{
		Source: cfg.Trivia.Source,
		Limit:  cfg.Trivia.Limit,
	})))
}

func TestNewProviderWithoutRedis(t *testing.T) {
	var hits int32
	cfg := loadConfig(t, upstream(t, &hits).URL)
	cfg.Redis.Addr = ""

	p := NewProvider(cfg, nil, zerolog.Nop())
	assert.Nil(t, p.Redis)
	assert.NoError(t, p.Close())

	_, err := p.Fetch(context.Background())
	require.NoError(t, err)
	_, err = p.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
