package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
	"github.com/gokatarajesh/trivia-quiz/internal/session"
	httperrors "github.com/gokatarajesh/trivia-quiz/pkg/http/errors"
	ws "github.com/gokatarajesh/trivia-quiz/pkg/http/ws"
)

// WSHandler serves /ws/sessions/{id} and fans registry changes out to the hub.
type WSHandler struct {
	manager  *session.Manager
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

var _ session.Listener = (*WSHandler)(nil)

// NewWSHandler creates the handler and subscribes it to manager.
func NewWSHandler(manager *session.Manager, hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *WSHandler {
	h := &WSHandler{
		manager:  manager,
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "session_ws").Logger(),
	}
	manager.Subscribe(h)
	return h
}

// SessionChanged broadcasts the new view to every watcher.
func (h *WSHandler) SessionChanged(id uuid.UUID, view quiz.View) {
	msg, err := ws.NewMessage(ws.TypeView, "", view)
	if err != nil {
		h.logger.Error().Err(err).Msg("encode view")
		return
	}
	_ = h.hub.BroadcastToSession(id, msg)
}

// SessionClosed disconnects the watchers of a torn down session.
func (h *WSHandler) SessionClosed(id uuid.UUID) {
	h.hub.CloseSession(id)
}

// HandleWebSocket upgrades the request and attaches the socket to the session.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	view, err := h.manager.View(id)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	connID := uuid.New()
	logger := h.logger.With().Str("session_id", id.String()).Str("conn_id", connID.String()).Logger()
	wsConn := ws.NewConnection(conn, logger)
	h.hub.Register(id, connID, wsConn)

	go wsConn.WritePump()

	if err := h.sendView(connID, "", view); err != nil {
		logger.Warn().Err(err).Msg("initial view not sent")
	}

	wsConn.ReadPump(func(msg ws.Message) error {
		return h.handleMessage(id, connID, msg)
	})

	h.hub.Unregister(connID)
}

// handleMessage routes one client message. Successful actions reach the
// client through the broadcast; failures are answered to the sender only.
func (h *WSHandler) handleMessage(sessionID, connID uuid.UUID, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.TypeSelect:
		var req ws.SelectPayload
		if len(msg.Payload) == 0 || json.Unmarshal(msg.Payload, &req) != nil {
			return h.sendError(connID, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Invalid select payload")
		}
		_, err = h.manager.Select(sessionID, req.Answer)
	case ws.TypeReveal:
		_, err = h.manager.Reveal(sessionID)
	case ws.TypeNext:
		_, err = h.manager.Next(sessionID)
	case ws.TypeAdvance:
		_, err = h.manager.Advance(sessionID)
	case ws.TypeRequestView:
		view, viewErr := h.manager.View(sessionID)
		if viewErr != nil {
			err = viewErr
			break
		}
		return h.sendView(connID, msg.RequestID, view)
	default:
		return h.sendError(connID, msg.RequestID, httperrors.ErrCodeUnknownMessageType, fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
	if err == nil {
		return nil
	}
	_, code := classify(err)
	return h.sendError(connID, msg.RequestID, code, err.Error())
}

func (h *WSHandler) sendView(connID uuid.UUID, requestID string, view quiz.View) error {
	msg, err := ws.NewMessage(ws.TypeView, requestID, view)
	if err != nil {
		return err
	}
	return h.hub.SendTo(connID, msg)
}

func (h *WSHandler) sendError(connID uuid.UUID, requestID, code, message string) error {
	msg, err := ws.NewMessage(ws.TypeError, requestID, ws.ErrorPayload{Code: code, Message: message})
	if err != nil {
		return err
	}
	return h.hub.SendTo(connID, msg)
}
