package server

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/config"
	"github.com/gokatarajesh/trivia-quiz/internal/logging"
	httperrors "github.com/gokatarajesh/trivia-quiz/pkg/http/errors"
)

// NewUpgrader builds the WebSocket upgrader. Origins are checked against the
// CORS allow list; a "*" entry or a request without Origin is accepted.
func NewUpgrader(allowed []string) websocket.Upgrader {
	origins := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		origins[o] = struct{}{}
	}
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := origins["*"]; ok {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// NewHTTPServer wires health, metrics, navbar, session and WebSocket routes.
// gatherer may be nil to serve the default Prometheus registry.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, sessions *SessionHandlers, sockets *WSHandler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewHandler(cfg, logger, gatherer, sessions, sockets),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewHandler builds the routed handler with CORS and request logging applied.
func NewHandler(cfg *config.App, logger zerolog.Logger, gatherer prometheus.Gatherer, sessions *SessionHandlers, sockets *WSHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if gatherer == nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	} else {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /v1/navbar", handleNavbar)

	if sessions != nil {
		mux.HandleFunc("POST /v1/sessions", sessions.Create)
		mux.HandleFunc("GET /v1/sessions/{id}", sessions.Get)
		mux.HandleFunc("POST /v1/sessions/{id}/select", sessions.Select)
		mux.HandleFunc("POST /v1/sessions/{id}/reveal", sessions.Reveal)
		mux.HandleFunc("POST /v1/sessions/{id}/next", sessions.Next)
		mux.HandleFunc("POST /v1/sessions/{id}/advance", sessions.Advance)
		mux.HandleFunc("DELETE /v1/sessions/{id}", sessions.Delete)
	}

	if sockets != nil {
		mux.HandleFunc("GET /ws/sessions/{id}", sockets.HandleWebSocket)
	} else {
		mux.HandleFunc("GET /ws/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
			httperrors.RespondError(w, http.StatusNotImplemented, httperrors.ErrCodeNotImplemented, "WebSocket handler not configured")
		})
	}

	corsMiddleware := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	return corsMiddleware(withLogger(logger, mux))
}

// withLogger stores a request-scoped logger in the context and logs each request.
func withLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
		reqLogger.Debug().Dur("elapsed", time.Since(start)).Msg("request served")
	})
}
