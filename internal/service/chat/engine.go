package chat

import (
	"context"
	"strings"

	"github.com/safetybuddy/backend/internal/model/chat"
	"github.com/safetybuddy/backend/internal/model/knowledge"
	"github.com/safetybuddy/backend/internal/service/ai"
	"github.com/safetybuddy/backend/internal/service/conversation"
	"github.com/safetybuddy/backend/pkg/log"
)

// Fallback texts keep every failed turn actionable. Provider faults never
// escape the engine; callers always receive a well-formed response.
const (
	textFallback = `I apologize, but I'm having trouble generating a response right now.

If this is an emergency, please call emergency services immediately (911 in US, 999 in UK, 112 in EU).

For non-emergency first-aid guidance, please try rephrasing your question.`

	imageFallback = `I apologize, but I couldn't analyze the image right now. Please try describing the injury in a text message instead.

If this is an emergency, please call emergency services immediately (911 in US, 999 in UK, 112 in EU).`

	imageAttachedMarker = " [Image attached]"
)

// Service orchestrates one conversational turn end to end: emergency check,
// knowledge retrieval, prompt composition, provider call, history update.
type Service struct {
	index    *knowledge.Index
	store    *conversation.Store
	composer ai.Composer
	provider ai.Provider
}

// NewService wires the session engine to its collaborators.
func NewService(index *knowledge.Index, store *conversation.Store, composer ai.Composer, provider ai.Provider) *Service {
	return &Service{
		index:    index,
		store:    store,
		composer: composer,
		provider: provider,
	}
}

// Chat runs one text turn for the session, creating it if needed.
func (s *Service) Chat(ctx context.Context, userMessage, sessionID string) chat.Response {
	session := s.store.GetOrCreate(sessionID)
	sid := session.SessionID

	if s.index.CheckForEmergency(userMessage) {
		return s.emergencyTurn(sid)
	}

	matches := s.index.Search(userMessage)

	var injuryInfo string
	var suggested *knowledge.Injury
	if len(matches) > 0 {
		top := matches[0]
		suggested = &top
		if err := s.store.SetCurrentInjury(sid, top); err != nil {
			log.Warnf("record current injury session=%s: %v", sid, err)
		}
		injuryInfo = s.index.FormatInjuryInfo(top)
	}

	var reply string
	if len(matches) == 0 && len(session.Messages) == 0 {
		// First contact with nothing to retrieve: greet without a model call.
		reply = ai.GreetingTemplate
	} else {
		reply = s.generate(ctx, sid, userMessage, injuryInfo, session.Messages)
	}

	if err := s.store.Append(sid,
		chat.Message{Role: chat.RoleUser, Content: userMessage},
		chat.Message{Role: chat.RoleAssistant, Content: reply},
	); err != nil {
		log.Errorf("append turn session=%s: %v", sid, err)
	}

	return chat.Response{
		Message:         reply,
		IsEmergency:     false,
		SessionID:       sid,
		SuggestedInjury: suggested,
	}
}

// ChatWithImage runs one image turn. A provider fault leaves the session
// history untouched and yields the fixed image fallback.
func (s *Service) ChatWithImage(ctx context.Context, userMessage string, image []byte, mimeType, sessionID string) chat.Response {
	session := s.store.GetOrCreate(sessionID)
	sid := session.SessionID

	prompt := s.composer.BuildImagePrompt(userMessage)
	reply, err := s.provider.GenerateFromTextAndImage(ctx, prompt, image, mimeType)
	if err != nil {
		log.Warnf("image analysis failed session=%s: %v", sid, err)
		return chat.Response{Message: imageFallback, IsEmergency: false, SessionID: sid}
	}

	stored := strings.TrimSpace(userMessage)
	if stored == "" {
		stored = ai.DefaultImageMessage
	}
	if err := s.store.Append(sid,
		chat.Message{Role: chat.RoleUser, Content: stored + imageAttachedMarker},
		chat.Message{Role: chat.RoleAssistant, Content: reply},
	); err != nil {
		log.Errorf("append image turn session=%s: %v", sid, err)
	}

	return chat.Response{Message: reply, IsEmergency: false, SessionID: sid}
}

// Context exposes a transcript copy for the transport layer.
func (s *Service) Context(sessionID string) (chat.Context, bool) {
	return s.store.Get(sessionID)
}

// ClearSession drops the session's history entirely.
func (s *Service) ClearSession(sessionID string) {
	s.store.Clear(sessionID)
}

// emergencyTurn short-circuits with the canned message. Only the assistant
// reply is recorded on this path; the user message is not.
func (s *Service) emergencyTurn(sid string) chat.Response {
	if err := s.store.MarkEmergency(sid); err != nil {
		log.Errorf("mark emergency session=%s: %v", sid, err)
	}

	canned := s.index.EmergencyResponse()
	if err := s.store.Append(sid, chat.Message{
		Role:        chat.RoleAssistant,
		Content:     canned,
		IsEmergency: true,
	}); err != nil {
		log.Errorf("append emergency reply session=%s: %v", sid, err)
	}

	log.Infof("emergency detected session=%s", sid)
	return chat.Response{Message: canned, IsEmergency: true, SessionID: sid}
}

func (s *Service) generate(ctx context.Context, sid, userMessage, injuryInfo string, history []chat.Message) string {
	prompt := s.composer.BuildPrompt(userMessage, injuryInfo, false, history)

	reply, err := s.provider.GenerateText(ctx, prompt)
	if err != nil {
		log.Warnf("provider failure session=%s, serving fallback: %v", sid, err)
		return textFallback
	}

	log.Infof("generated response session=%s length=%d", sid, len(reply))
	return reply
}
