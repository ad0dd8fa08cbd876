package chat

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/safetybuddy/backend/internal/service/chat"
	"github.com/safetybuddy/backend/pkg/utils"
)

// maxImageBytes caps inbound attachment size.
const maxImageBytes = 10 << 20

// Handler exposes the session engine over HTTP.
type Handler struct {
	engine *chatservice.Service
}

// New creates the chat handler.
func New(engine *chatservice.Service) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes registers chat and session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Post("/chat/image", h.handleChatWithImage)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Delete("/sessions/{sessionID}", h.handleClearSession)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp := h.engine.Chat(r.Context(), payload.Message, payload.SessionID)
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleChatWithImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
	}

	resp := h.engine.ChatWithImage(r.Context(), r.FormValue("message"), image, mimeType, r.FormValue("sessionId"))
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctx, ok := h.engine.Context(sessionID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, ctx)
}

func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}
