package ws

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatservice "github.com/safetybuddy/backend/internal/service/chat"
	"github.com/safetybuddy/backend/pkg/log"
)

// Handler serves the live web-chat transport: one JSON frame in, one
// response frame out, over a persistent connection.
type Handler struct {
	engine   *chatservice.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(engine *chatservice.Service) *Handler {
	return &Handler{
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket chat route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/chat", h.handleChat)
}

type inbound struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("websocket read failed: %v", err)
			}
			return
		}

		if strings.TrimSpace(in.Message) == "" {
			if err := conn.WriteJSON(map[string]string{"error": "message is required"}); err != nil {
				return
			}
			continue
		}

		resp := h.engine.Chat(r.Context(), in.Message, in.SessionID)
		if err := conn.WriteJSON(resp); err != nil {
			log.Warnf("websocket write failed: %v", err)
			return
		}
	}
}
