package chat

import "github.com/safetybuddy/backend/internal/model/knowledge"

// Context accumulates per-session conversation state for the process
// lifetime. Messages are append-only; EmergencyDetected latches once set.
type Context struct {
	SessionID         string            `json:"sessionId"`
	Messages          []Message         `json:"messages"`
	CurrentInjury     *knowledge.Injury `json:"currentInjury,omitempty"`
	EmergencyDetected bool              `json:"emergencyDetected"`
}
