// Package config reads runtime configuration from the environment once,
// so feature flags and thresholds are explicit values rather than ambient
// lookups scattered through call sites.
package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	ServerAddress string
	CORSOrigins   []string

	Provider         string
	Model            string
	GoogleAPIKey     string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string

	PromptVersion         string
	RetryOnLowEmpathy     bool
	RetryEmpathyThreshold int
}

func Load() Config {
	cfg := Config{
		ServerAddress: ":" + envStr("PORT", "8000"),
		CORSOrigins:   splitOrigins(envStr("CORS_ORIGINS", "*")),

		Provider:         envStr("AI_PROVIDER", "gemini"),
		Model:            envStr("AI_MODEL", envStr("GEMINI_MODEL", "")),
		GoogleAPIKey:     envStr("GOOGLE_API_KEY", ""),
		OpenAIAPIKey:     envStr("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    envStr("OPENAI_BASE_URL", ""),
		AnthropicAPIKey:  envStr("ANTHROPIC_API_KEY", ""),
		AnthropicBaseURL: envStr("ANTHROPIC_BASE_URL", ""),

		PromptVersion:         envStr("PROMPT_VERSION", "v1"),
		RetryOnLowEmpathy:     envBool("RETRY_ON_LOW_EMPATHY", false),
		RetryEmpathyThreshold: envInt("RETRY_EMPATHY_THRESHOLD", 3),
	}

	if cfg.RetryEmpathyThreshold < 1 {
		cfg.RetryEmpathyThreshold = 1
	}
	if cfg.RetryEmpathyThreshold > 5 {
		cfg.RetryEmpathyThreshold = 5
	}
	return cfg
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "claude":
		return c.AnthropicAPIKey
	default:
		return c.GoogleAPIKey
	}
}

// BaseURL returns the endpoint override for the configured provider.
func (c Config) BaseURL() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIBaseURL
	case "claude":
		return c.AnthropicBaseURL
	default:
		return ""
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "":
		return fallback
	default:
		return false
	}
}
