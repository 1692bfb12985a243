// Package config loads orchestrator settings from an optional YAML file with
// AGRIMIND_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Settings holds every knob the orchestrator consumes.
type Settings struct {
	// Text-generation provider: gemini, openai, anthropic, ollama, dummy.
	Provider string `koanf:"provider"`
	APIKey   string `koanf:"api_key"`
	Model    string `koanf:"model"`
	// Ordered fallback model names tried when the primary is rejected.
	ModelFallbacks []string `koanf:"model_fallbacks"`
	OllamaHost     string   `koanf:"ollama_host"`

	Temperature           float32 `koanf:"temperature"`
	TopP                  float32 `koanf:"top_p"`
	TopK                  int32   `koanf:"top_k"`
	MaxOutputTokens       int32   `koanf:"max_output_tokens"`
	RequestTimeoutSeconds int     `koanf:"request_timeout_seconds"`

	// LowLLMMode forces deterministic response synthesis to conserve quota.
	LowLLMMode bool `koanf:"low_llm_mode"`

	AgentTimeoutSeconds  int    `koanf:"agent_timeout_seconds"`
	MaxSelectedAgents    int    `koanf:"max_selected_agents"`
	DefaultLocale        string `koanf:"default_locale"`
	CacheSize            int    `koanf:"cache_size"`
	CacheTTLSeconds      int    `koanf:"cache_ttl_seconds"`
	CachePath            string `koanf:"cache_path"`
	ListenAddr           string `koanf:"listen_addr"`
	LogLevel             string `koanf:"log_level"`
	MaxConcurrentQueries int    `koanf:"max_concurrent_queries"`
}

// Defaults returns the baseline settings before file and env overrides.
func Defaults() Settings {
	return Settings{
		Provider:              "gemini",
		Model:                 "gemini-2.0-flash",
		ModelFallbacks:        []string{"gemini-flash-latest", "gemini-pro-latest", "gemini-pro"},
		OllamaHost:            "http://localhost:11434",
		Temperature:           0.4,
		TopP:                  0.95,
		TopK:                  40,
		MaxOutputTokens:       512,
		RequestTimeoutSeconds: 20,
		AgentTimeoutSeconds:   30,
		MaxSelectedAgents:     5,
		DefaultLocale:         "en-IN",
		CacheSize:             256,
		CacheTTLSeconds:       300,
		ListenAddr:            ":8080",
		LogLevel:              "info",
		MaxConcurrentQueries:  32,
	}
}

// Load reads settings from the optional YAML file at path, then applies
// AGRIMIND_* environment variables on top. An empty path skips the file.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// Flat keys: AGRIMIND_LOW_LLM_MODE -> low_llm_mode.
	if err := k.Load(env.Provider("AGRIMIND_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "AGRIMIND_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	s := Defaults()
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Conventional provider key env vars still work when the prefixed one
	// is absent.
	if s.APIKey == "" {
		switch s.Provider {
		case "gemini", "google":
			s.APIKey = firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY")
		case "openai":
			s.APIKey = firstEnv("OPENAI_API_KEY")
		case "anthropic", "claude":
			s.APIKey = firstEnv("ANTHROPIC_API_KEY")
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks that the settings are usable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Provider) == "" {
		return &ConfigError{"provider must not be empty"}
	}
	if strings.TrimSpace(s.Model) == "" {
		return &ConfigError{"model must not be empty"}
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return &ConfigError{"temperature must be between 0 and 2"}
	}
	if s.AgentTimeoutSeconds < 1 {
		return &ConfigError{"agent_timeout_seconds must be at least 1"}
	}
	if s.MaxSelectedAgents < 1 {
		return &ConfigError{"max_selected_agents must be at least 1"}
	}
	if s.CacheSize < 0 {
		return &ConfigError{"cache_size must not be negative"}
	}
	if s.MaxConcurrentQueries < 1 {
		return &ConfigError{"max_concurrent_queries must be at least 1"}
	}
	return nil
}

// RequestTimeout returns the per-call model timeout as a duration.
func (s *Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// AgentTimeout returns the per-agent execution timeout as a duration.
func (s *Settings) AgentTimeout() time.Duration {
	return time.Duration(s.AgentTimeoutSeconds) * time.Second
}

// CacheTTL returns the response-cache time-to-live as a duration.
func (s *Settings) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSeconds) * time.Second
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	message string
}

func (e *ConfigError) Error() string { return e.message }
