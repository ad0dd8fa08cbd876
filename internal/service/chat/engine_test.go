package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	chatmodel "github.com/safetybuddy/backend/internal/model/chat"
	"github.com/safetybuddy/backend/internal/model/knowledge"
	"github.com/safetybuddy/backend/internal/service/ai"
	"github.com/safetybuddy/backend/internal/service/conversation"
)

type fakeProvider struct {
	textFn    func(prompt string) (string, error)
	imageFn   func(prompt string, image []byte, mimeType string) (string, error)
	textCalls int
}

func (f *fakeProvider) GenerateText(_ context.Context, prompt string) (string, error) {
	f.textCalls++
	if f.textFn == nil {
		return "generated reply", nil
	}
	return f.textFn(prompt)
}

func (f *fakeProvider) GenerateFromTextAndImage(_ context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if f.imageFn == nil {
		return "image reply", nil
	}
	return f.imageFn(prompt, image, mimeType)
}

func testIndex() *knowledge.Index {
	base := knowledge.Base{
		Injuries: []knowledge.Injury{
			{
				ID:       "cuts_scrapes",
				Name:     "Cuts and Scrapes",
				Keywords: []string{"cut", "scrape"},
				Severity: knowledge.SeverityMinor,
				Symptoms: []string{"bleeding"},
				FirstAidSteps: []knowledge.FirstAidStep{
					{Step: 1, Instruction: "Apply pressure."},
				},
				EmergencyTriggers: []string{"Bleeding does not stop"},
			},
			{
				ID:       "minor_burns",
				Name:     "Burns",
				Keywords: []string{"burn"},
				Severity: knowledge.SeverityModerate,
				Symptoms: []string{"red skin"},
			},
		},
	}
	keywords := knowledge.EmergencyKeywords{
		CriticalKeywords: []string{"not breathing", "unconscious"},
		EmergencyResponse: knowledge.EmergencyResponse{
			Message: "CALL EMERGENCY SERVICES NOW: 911 (US), 999 (UK), 112 (EU).",
		},
	}
	return knowledge.NewIndex(base, keywords)
}

func newTestEngine(provider ai.Provider) (*Service, *conversation.Store) {
	store := conversation.NewStore()
	engine := NewService(testIndex(), store, ai.NewComposer(6), provider)
	return engine, store
}

func TestChatEmergencyShortCircuit(t *testing.T) {
	provider := &fakeProvider{}
	engine, store := newTestEngine(provider)

	resp := engine.Chat(context.Background(), "he is not breathing", "")

	if !resp.IsEmergency {
		t.Fatal("expected emergency response")
	}
	if resp.Message != "CALL EMERGENCY SERVICES NOW: 911 (US), 999 (UK), 112 (EU)." {
		t.Fatalf("expected canned emergency text, got %q", resp.Message)
	}
	if provider.textCalls != 0 {
		t.Fatal("emergency path must not call the provider")
	}

	ctx, _ := store.Get(resp.SessionID)
	if !ctx.EmergencyDetected {
		t.Fatal("session emergency flag must be set")
	}
	// Only the assistant's canned reply is recorded on the emergency path.
	if len(ctx.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ctx.Messages))
	}
	if ctx.Messages[0].Role != chatmodel.RoleAssistant || !ctx.Messages[0].IsEmergency {
		t.Fatal("recorded message must be the flagged assistant reply")
	}
}

func TestChatGreetingOnFirstContact(t *testing.T) {
	provider := &fakeProvider{}
	engine, store := newTestEngine(provider)

	resp := engine.Chat(context.Background(), "hello", "")

	if resp.IsEmergency {
		t.Fatal("greeting must not be an emergency")
	}
	if resp.Message != ai.GreetingTemplate {
		t.Fatalf("expected verbatim greeting template, got %q", resp.Message)
	}
	if provider.textCalls != 0 {
		t.Fatal("greeting path must not call the provider")
	}

	ctx, _ := store.Get(resp.SessionID)
	if len(ctx.Messages) != 2 {
		t.Fatalf("greeting turn must record user and assistant, got %d", len(ctx.Messages))
	}
}

func TestChatSuggestsInjury(t *testing.T) {
	var captured string
	provider := &fakeProvider{textFn: func(prompt string) (string, error) {
		captured = prompt
		return "press on the wound", nil
	}}
	engine, store := newTestEngine(provider)

	resp := engine.Chat(context.Background(), "I cut my finger", "")

	if resp.IsEmergency {
		t.Fatal("expected non-emergency response")
	}
	if resp.SuggestedInjury == nil || resp.SuggestedInjury.Name != "Cuts and Scrapes" {
		t.Fatalf("expected suggested injury, got %+v", resp.SuggestedInjury)
	}
	if resp.Message != "press on the wound" {
		t.Fatalf("expected provider reply, got %q", resp.Message)
	}
	if !strings.Contains(captured, "**Cuts and Scrapes** (Severity: minor)") {
		t.Fatal("prompt must embed the formatted injury info")
	}

	ctx, _ := store.Get(resp.SessionID)
	if len(ctx.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ctx.Messages))
	}
	if ctx.CurrentInjury == nil || ctx.CurrentInjury.ID != "cuts_scrapes" {
		t.Fatal("current injury must be recorded on the session")
	}
}

func TestChatUnmatchedWithHistoryCallsProvider(t *testing.T) {
	var captured string
	provider := &fakeProvider{textFn: func(prompt string) (string, error) {
		captured = prompt
		return "tell me more", nil
	}}
	engine, _ := newTestEngine(provider)

	first := engine.Chat(context.Background(), "hello", "")
	resp := engine.Chat(context.Background(), "it still hurts a bit", first.SessionID)

	if provider.textCalls != 1 {
		t.Fatalf("expected exactly one provider call, got %d", provider.textCalls)
	}
	if resp.Message != "tell me more" {
		t.Fatalf("unexpected reply %q", resp.Message)
	}
	if resp.SuggestedInjury != nil {
		t.Fatal("no injury should be suggested for an unmatched query")
	}
	if strings.Contains(captured, "(Severity:") {
		t.Fatal("unmatched query must pass empty injury info")
	}
	if !strings.Contains(captured, "Recent conversation:") {
		t.Fatal("prompt must carry the prior transcript")
	}
}

func TestChatFallbackOnProviderFailure(t *testing.T) {
	provider := &fakeProvider{textFn: func(string) (string, error) {
		return "", errors.New("quota exceeded")
	}}
	engine, store := newTestEngine(provider)

	resp := engine.Chat(context.Background(), "I burned my hand", "")

	if resp.IsEmergency {
		t.Fatal("fallback must not flag emergency")
	}
	if resp.Message != textFallback {
		t.Fatalf("expected fixed fallback, got %q", resp.Message)
	}

	// The failed turn still lands in history with the fallback reply.
	ctx, _ := store.Get(resp.SessionID)
	if len(ctx.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ctx.Messages))
	}
	if ctx.Messages[1].Content != textFallback {
		t.Fatal("assistant message must hold the fallback text")
	}
}

func TestChatSessionIdentity(t *testing.T) {
	engine, store := newTestEngine(&fakeProvider{})

	a := engine.Chat(context.Background(), "hello", "")
	b := engine.Chat(context.Background(), "hello", "")
	if a.SessionID == b.SessionID {
		t.Fatal("calls without a session id must mint distinct sessions")
	}

	c := engine.Chat(context.Background(), "I burned my hand", a.SessionID)
	if c.SessionID != a.SessionID {
		t.Fatal("explicit session id must be preserved")
	}

	ctx, _ := store.Get(a.SessionID)
	if len(ctx.Messages) != 4 {
		t.Fatalf("two non-emergency turns must record 4 messages, got %d", len(ctx.Messages))
	}
}

func TestChatWithImageSuccess(t *testing.T) {
	var gotMime string
	provider := &fakeProvider{imageFn: func(prompt string, image []byte, mimeType string) (string, error) {
		gotMime = mimeType
		if !strings.Contains(prompt, "User's message: what happened here?") {
			t.Fatalf("image prompt missing user message: %q", prompt)
		}
		return "looks like a minor scrape", nil
	}}
	engine, store := newTestEngine(provider)

	resp := engine.ChatWithImage(context.Background(), "what happened here?", []byte{0xFF, 0xD8}, "image/jpeg", "")

	if resp.IsEmergency {
		t.Fatal("image turn must not flag emergency")
	}
	if resp.Message != "looks like a minor scrape" {
		t.Fatalf("unexpected reply %q", resp.Message)
	}
	if gotMime != "image/jpeg" {
		t.Fatalf("mime type not forwarded, got %q", gotMime)
	}

	ctx, _ := store.Get(resp.SessionID)
	if len(ctx.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(ctx.Messages))
	}
	if !strings.HasSuffix(ctx.Messages[0].Content, imageAttachedMarker) {
		t.Fatalf("user message must carry the attachment marker, got %q", ctx.Messages[0].Content)
	}
}

func TestChatWithImageFailureLeavesHistoryUntouched(t *testing.T) {
	provider := &fakeProvider{imageFn: func(string, []byte, string) (string, error) {
		return "", errors.New("timeout")
	}}
	engine, store := newTestEngine(provider)

	seed := engine.Chat(context.Background(), "hello", "")
	before, _ := store.Get(seed.SessionID)

	resp := engine.ChatWithImage(context.Background(), "see photo", []byte{0x01}, "image/png", seed.SessionID)

	if resp.IsEmergency {
		t.Fatal("image fallback must not flag emergency")
	}
	if resp.Message != imageFallback {
		t.Fatalf("expected image fallback, got %q", resp.Message)
	}

	after, _ := store.Get(seed.SessionID)
	if len(after.Messages) != len(before.Messages) {
		t.Fatalf("failed image turn must not append: before=%d after=%d",
			len(before.Messages), len(after.Messages))
	}
}

func TestChatWithImageEmptyMessageUsesPlaceholder(t *testing.T) {
	engine, store := newTestEngine(&fakeProvider{})

	resp := engine.ChatWithImage(context.Background(), "  ", []byte{0x01}, "image/png", "")

	ctx, _ := store.Get(resp.SessionID)
	want := ai.DefaultImageMessage + imageAttachedMarker
	if ctx.Messages[0].Content != want {
		t.Fatalf("expected %q, got %q", want, ctx.Messages[0].Content)
	}
}
