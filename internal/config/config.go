package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	AI        AIConfig
	Knowledge KnowledgeConfig
	Chat      ChatConfig
	Webhook   WebhookConfig
}

// Load reads the full configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Log:       loadLogConfig(),
		AI:        ai,
		Knowledge: loadKnowledgeConfig(),
		Chat:      chat,
		Webhook:   loadWebhookConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig describes logger level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// AIConfig describes the generative provider.
type AIConfig struct {
	APIKey      string
	Model       string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether provider credentials were supplied.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("GEMINI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("GEMINI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		Model:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// KnowledgeConfig locates the corpus files.
type KnowledgeConfig struct {
	Dir string
}

func loadKnowledgeConfig() KnowledgeConfig {
	return KnowledgeConfig{Dir: getEnvOrDefault("KNOWLEDGE_DIR", "data")}
}

// ChatConfig tunes the session engine.
type ChatConfig struct {
	HistoryLimit int
}

func loadChatConfig() (ChatConfig, error) {
	limit := 6
	if override, err := parseOptionalIntEnv("CHAT_HISTORY_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			limit = 1
		} else {
			limit = *override
		}
	}
	return ChatConfig{HistoryLimit: limit}, nil
}

// WebhookConfig carries the messaging-channel credentials used to fetch
// inbound media attachments.
type WebhookConfig struct {
	AccountSID string
	AuthToken  string
}

// Enabled reports whether media downloads can be authenticated.
func (c WebhookConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != ""
}

func loadWebhookConfig() WebhookConfig {
	return WebhookConfig{
		AccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		AuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
