package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/safetybuddy/backend/internal/config"
)

// Provider is the generative completion boundary. Both calls may fail
// transiently; the session engine owns the fallback behavior.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateFromTextAndImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// GeminiProvider implements Provider on the Google GenAI SDK. One client is
// constructed at startup and shared across all requests.
type GeminiProvider struct {
	client *genai.Client
	model  string
	cfg    config.AIConfig
}

// NewGeminiProvider binds credentials once. A missing API key is a
// configuration fault and surfaces here, not per request.
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig) (*GeminiProvider, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiProvider{client: client, model: cfg.Model, cfg: cfg}, nil
}

// GenerateText requests a completion for a text-only prompt.
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), p.generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return responseText(resp, p.model)
}

// GenerateFromTextAndImage sends the prompt plus the raw image as an inline
// data part with its declared MIME type.
func (p *GeminiProvider) GenerateFromTextAndImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, p.generationConfig())
	if err != nil {
		return "", fmt.Errorf("generate content from image: %w", err)
	}
	return responseText(resp, p.model)
}

func (p *GeminiProvider) generationConfig() *genai.GenerateContentConfig {
	if p.cfg.Temperature == nil && p.cfg.MaxTokens == nil {
		return nil
	}

	cfg := &genai.GenerateContentConfig{}
	if p.cfg.Temperature != nil {
		val := float32(*p.cfg.Temperature)
		cfg.Temperature = &val
	}
	if p.cfg.MaxTokens != nil {
		cfg.MaxOutputTokens = int32(*p.cfg.MaxTokens)
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse, model string) (string, error) {
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion from model %s", model)
	}
	return text, nil
}
