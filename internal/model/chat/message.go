package chat

import "time"

// Roles assigned by the session engine when recording a turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single stored turn in a conversation.
type Message struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	IsEmergency bool      `json:"isEmergency,omitempty"`
}
