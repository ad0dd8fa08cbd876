package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/safetybuddy/backend/internal/config"
	chathandler "github.com/safetybuddy/backend/internal/handler/chat"
	knowledgehandler "github.com/safetybuddy/backend/internal/handler/knowledge"
	"github.com/safetybuddy/backend/internal/handler/webhook"
	"github.com/safetybuddy/backend/internal/handler/ws"
	"github.com/safetybuddy/backend/internal/middleware"
	"github.com/safetybuddy/backend/internal/model/knowledge"
	chatservice "github.com/safetybuddy/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(engine *chatservice.Service, index *knowledge.Index, webhookCfg config.WebhookConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		chathandler.New(engine).RegisterRoutes(api)
		knowledgehandler.New(index).RegisterRoutes(api)
		webhook.New(engine, webhookCfg).RegisterRoutes(api)
		ws.New(engine).RegisterRoutes(api)
	})

	return r
}
