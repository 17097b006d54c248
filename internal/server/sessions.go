package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/logging"
	"github.com/gokatarajesh/trivia-quiz/internal/navbar"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
	"github.com/gokatarajesh/trivia-quiz/internal/session"
	httperrors "github.com/gokatarajesh/trivia-quiz/pkg/http/errors"
)

// SessionResponse is the body of every successful session endpoint.
type SessionResponse struct {
	ID   string    `json:"id"`
	View quiz.View `json:"view"`
}

// SelectRequest is the body of POST /v1/sessions/{id}/select.
type SelectRequest struct {
	Answer *string `json:"answer"`
}

// SessionHandlers exposes the session registry over REST.
type SessionHandlers struct {
	manager *session.Manager
	logger  zerolog.Logger
}

// NewSessionHandlers constructs REST handlers.
func NewSessionHandlers(manager *session.Manager, logger zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{
		manager: manager,
		logger:  logger.With().Str("component", "session_http").Logger(),
	}
}

// Create handles POST /v1/sessions. Loading continues after the response.
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	id, view, err := h.manager.Create()
	if err != nil {
		h.respondActionError(w, r, err, quiz.View{})
		return
	}
	httperrors.RespondJSON(w, http.StatusCreated, SessionResponse{ID: id.String(), View: view})
}

// Get handles GET /v1/sessions/{id}.
func (h *SessionHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.manager.View(id)
	if err != nil {
		h.respondActionError(w, r, err, view)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, SessionResponse{ID: id.String(), View: view})
}

// Select handles POST /v1/sessions/{id}/select with {"answer": "..."}.
func (h *SessionHandlers) Select(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Request body must be JSON")
		return
	}
	if req.Answer == nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "answer is required", "answer")
		return
	}
	h.act(w, r, id, func() (quiz.View, error) { return h.manager.Select(id, *req.Answer) })
}

// Reveal handles POST /v1/sessions/{id}/reveal.
func (h *SessionHandlers) Reveal(w http.ResponseWriter, r *http.Request) {
	if id, ok := sessionID(w, r); ok {
		h.act(w, r, id, func() (quiz.View, error) { return h.manager.Reveal(id) })
	}
}

// Next handles POST /v1/sessions/{id}/next.
func (h *SessionHandlers) Next(w http.ResponseWriter, r *http.Request) {
	if id, ok := sessionID(w, r); ok {
		h.act(w, r, id, func() (quiz.View, error) { return h.manager.Next(id) })
	}
}

// Advance handles POST /v1/sessions/{id}/advance.
func (h *SessionHandlers) Advance(w http.ResponseWriter, r *http.Request) {
	if id, ok := sessionID(w, r); ok {
		h.act(w, r, id, func() (quiz.View, error) { return h.manager.Advance(id) })
	}
}

// Delete handles DELETE /v1/sessions/{id}. Watching sockets are dropped by
// the registry listener.
func (h *SessionHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.manager.Close(id); err != nil {
		h.respondActionError(w, r, err, quiz.View{})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandlers) act(w http.ResponseWriter, r *http.Request, id uuid.UUID, action func() (quiz.View, error)) {
	view, err := action()
	if err != nil {
		h.respondActionError(w, r, err, view)
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, SessionResponse{ID: id.String(), View: view})
}

func (h *SessionHandlers) respondActionError(w http.ResponseWriter, r *http.Request, err error, view quiz.View) {
	status, code := classify(err)
	switch status {
	case http.StatusConflict:
		httperrors.RespondConflict(w, code, err.Error(), map[string]interface{}{"view": view})
	case http.StatusInternalServerError:
		logger := logging.FromContext(r.Context())
		logger.Error().Err(err).Msg("session action failed")
		httperrors.RespondInternalError(w, "Internal server error")
	default:
		httperrors.RespondError(w, status, code, err.Error())
	}
}

// classify maps registry and session errors onto a status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, httperrors.ErrCodeSessionNotFound
	case errors.Is(err, session.ErrCapacity):
		return http.StatusServiceUnavailable, httperrors.ErrCodeSessionLimit
	case errors.Is(err, quiz.ErrNotReady):
		return http.StatusConflict, httperrors.ErrCodeNotReady
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return http.StatusConflict, httperrors.ErrCodeAlreadyAnswered
	case errors.Is(err, quiz.ErrNotAnswered):
		return http.StatusConflict, httperrors.ErrCodeNotAnswered
	case errors.Is(err, quiz.ErrNoSelection):
		return http.StatusConflict, httperrors.ErrCodeNoSelection
	case errors.Is(err, quiz.ErrUnknownOption):
		return http.StatusConflict, httperrors.ErrCodeUnknownOption
	case errors.Is(err, quiz.ErrClosed):
		return http.StatusConflict, httperrors.ErrCodeSessionClosed
	default:
		return http.StatusInternalServerError, httperrors.ErrCodeInternalError
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Session id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleNavbar(w http.ResponseWriter, r *http.Request) {
	httperrors.RespondJSON(w, http.StatusOK, navbar.Default())
}
