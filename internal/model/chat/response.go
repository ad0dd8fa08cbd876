package chat

import "github.com/safetybuddy/backend/internal/model/knowledge"

// Response is the structured result of one chat turn. Produced fresh per
// call; SuggestedInjury is set only when knowledge retrieval found a match.
type Response struct {
	Message         string            `json:"message"`
	IsEmergency     bool              `json:"isEmergency"`
	SessionID       string            `json:"sessionId"`
	SuggestedInjury *knowledge.Injury `json:"suggestedInjury,omitempty"`
}
