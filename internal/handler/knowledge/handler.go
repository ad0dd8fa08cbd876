package knowledge

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safetybuddy/backend/internal/model/knowledge"
	"github.com/safetybuddy/backend/pkg/utils"
)

// Handler serves read-only corpus lookups.
type Handler struct {
	index *knowledge.Index
}

// New creates the knowledge handler.
func New(index *knowledge.Index) *Handler {
	return &Handler{index: index}
}

// RegisterRoutes registers knowledge browse routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/injuries", h.handleList)
	r.Get("/injuries/{injuryID}", h.handleGet)
	r.Get("/disclaimer", h.handleDisclaimer)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"injuries": h.index.Injuries(),
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	injury, ok := h.index.InjuryByID(chi.URLParam(r, "injuryID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "injury not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, injury)
}

func (h *Handler) handleDisclaimer(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"disclaimer": h.index.Disclaimer(),
	})
}
