package webhook

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/safetybuddy/backend/internal/config"
	"github.com/safetybuddy/backend/internal/model/chat"
	chatservice "github.com/safetybuddy/backend/internal/service/chat"
	"github.com/safetybuddy/backend/pkg/log"
)

const (
	maxMediaBytes = 10 << 20

	// errorReply answers webhook-level faults; turn-level provider faults are
	// already converted to fallback texts inside the engine.
	errorReply = "Sorry, I encountered an error. If this is an emergency, please call emergency services immediately."
)

// Handler adapts Twilio-style WhatsApp webhooks to the session engine. The
// sender's phone number doubles as the session id.
type Handler struct {
	engine *chatservice.Service
	cfg    config.WebhookConfig
	client *http.Client
}

// New creates the webhook handler.
func New(engine *chatservice.Service, cfg config.WebhookConfig) *Handler {
	return &Handler{
		engine: engine,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// RegisterRoutes registers the inbound message route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/whatsapp", h.handleInbound)
}

type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func (h *Handler) handleInbound(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Warnf("webhook form parse failed: %v", err)
		respondTwiML(w, errorReply)
		return
	}

	body := r.FormValue("Body")
	from := r.FormValue("From")
	numMedia, _ := strconv.Atoi(r.FormValue("NumMedia"))

	sessionID := strings.TrimPrefix(from, "whatsapp:")

	var resp chat.Response
	mediaURL := r.FormValue("MediaUrl0")
	if numMedia > 0 && mediaURL != "" {
		resp = h.imageTurn(r.Context(), body, mediaURL, r.FormValue("MediaContentType0"), sessionID)
	} else {
		resp = h.engine.Chat(r.Context(), body, sessionID)
	}

	respondTwiML(w, resp.Message)
}

func (h *Handler) imageTurn(ctx context.Context, body, mediaURL, mimeType, sessionID string) chat.Response {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	image, err := h.downloadMedia(ctx, mediaURL)
	if err != nil {
		log.Warnf("media download failed session=%s: %v", sessionID, err)
		// Degrade to a text turn so the sender still gets guidance.
		return h.engine.Chat(ctx, "I received an image but had trouble processing it. "+body, sessionID)
	}

	return h.engine.ChatWithImage(ctx, body, image, mimeType, sessionID)
}

func (h *Handler) downloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if h.cfg.Enabled() {
		req.SetBasicAuth(h.cfg.AccountSID, h.cfg.AuthToken)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
}

func respondTwiML(w http.ResponseWriter, message string) {
	reply, err := xml.Marshal(twiml{Message: message})
	if err != nil {
		log.Errorf("failed to marshal twiml reply: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	if _, err := w.Write(append([]byte(xml.Header), reply...)); err != nil {
		log.Warnf("failed to write twiml reply: %v", err)
	}
}
