package ai

import (
	"fmt"
	"strings"

	"github.com/safetybuddy/backend/internal/model/chat"
)

// SystemPrompt frames every non-emergency completion request.
const SystemPrompt = `You are SafetyBuddy, a First Aid Assistant.
ROLE: Provide immediate, short, and actionable first-aid steps for domestic injuries.
GUIDELINES:
1. Be concise (emergency mode).
2. Prioritize safety.
3. If serious, say "CALL EMERGENCY SERVICES" immediately.
4. No medical diagnosis.
FORMAT:
- Brief assessment
- Numbered steps
- Warning signs
- Disclaimer`

// EmergencySystemPrompt replaces SystemPrompt when a critical keyword fired.
const EmergencySystemPrompt = `EMERGENCY SITUATION DETECTED!

The user has described symptoms or a situation that may be life-threatening. Your response MUST:
1. Start with a clear, urgent call to action to phone emergency services
2. Provide the relevant emergency numbers
3. Give brief instructions on what to do while waiting for help
4. Keep the person calm and focused

Do NOT provide lengthy first-aid instructions in true emergencies - the priority is getting professional help immediately.`

const imagePromptTemplate = `You are a first-aid assistant analyzing an image.

CRITICAL DISCLAIMERS:
- This is NOT a medical diagnosis
- If this appears to be a serious injury, the user should seek immediate professional medical help
- Emergency services should be called for: severe bleeding, burns covering large areas, deep wounds, signs of shock, difficulty breathing, or suspected fractures

Based on the image provided, please:
1. Describe what you observe
2. Assess the severity (minor, moderate, or potentially serious)
3. Provide appropriate first-aid steps if it's minor
4. STRONGLY recommend professional medical care if it appears moderate to serious

User's message: %s

Remember: Be helpful but cautious. Better to over-recommend professional care than under-recommend it.`

// DefaultImageMessage stands in when an image arrives with no caption.
const DefaultImageMessage = "Please analyze this image"

// Fixed responses for turns that never reach the model.
const (
	GreetingTemplate = `Hello! I'm SafetyBuddy your First Aid Assistant. I'm here to help you with guidance for common domestic accidents and injuries.

**I can help with:**
- Cuts and scrapes
- Burns
- Sprains and strains
- Nosebleeds
- Insect stings
- And more

**Important:** I provide first-aid guidance only, not medical diagnosis. For serious injuries, always call emergency services.

What can I help you with today?`

	DisclaimerTemplate = `⚠️ **Important Disclaimer**

This chatbot provides basic first-aid guidance only. It is not a substitute for professional medical advice, diagnosis, or treatment.

**For life-threatening emergencies, always call emergency services immediately.**

If you're unsure about the severity of an injury, it's always better to seek professional medical help.`

	NotUnderstoodTemplate = `I'm not sure I understood your question completely. Could you provide more details about the injury or situation? For example:
- What happened?
- What symptoms are you seeing?
- Where is the injury located?

If this is an emergency, please call emergency services immediately.`

	EndConversationTemplate = `I hope this information was helpful! Remember:
- For serious injuries, always seek professional medical care
- When in doubt, it's better to call for help
- Keep emergency numbers handy

Stay safe! 🏥`
)

// Composer deterministically assembles provider prompts. HistoryLimit caps
// how many trailing messages enter the transcript section.
type Composer struct {
	HistoryLimit int
}

// NewComposer returns a Composer, defaulting to a six-message transcript.
func NewComposer(historyLimit int) Composer {
	if historyLimit <= 0 {
		historyLimit = 6
	}
	return Composer{HistoryLimit: historyLimit}
}

// BuildPrompt assembles the instruction text for one text turn. History is
// the pre-turn transcript; role labels come from stored message roles, never
// from user content.
func (c Composer) BuildPrompt(userMessage, injuryInfo string, isEmergency bool, history []chat.Message) string {
	if isEmergency {
		return fmt.Sprintf("%s\n\nUser's message: \"%s\"\n\nProvide an immediate emergency response.",
			EmergencySystemPrompt, userMessage)
	}

	prompt := fmt.Sprintf("%s\n\nUser's message: \"%s\"\n\nRelevant first-aid information from knowledge base:\n%s\n\nProvide a helpful, conversational response using this information. Be concise and actionable.",
		SystemPrompt, userMessage, injuryInfo)

	return prompt + c.transcript(history)
}

// BuildImagePrompt produces the fixed image-analysis instruction text.
func (c Composer) BuildImagePrompt(userMessage string) string {
	message := strings.TrimSpace(userMessage)
	if message == "" {
		message = DefaultImageMessage
	}
	return fmt.Sprintf(imagePromptTemplate, message)
}

func (c Composer) transcript(history []chat.Message) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > c.HistoryLimit {
		history = history[len(history)-c.HistoryLimit:]
	}

	var b strings.Builder
	b.WriteString("\n\nRecent conversation:\n")
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n")
		}
		label := "Assistant"
		if msg.Role == chat.RoleUser {
			label = "User"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}
