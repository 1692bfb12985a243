package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.AgentTimeout() != 30*time.Second {
		t.Errorf("AgentTimeout = %v, want 30s", cfg.AgentTimeout())
	}
	if cfg.MaxSelectedAgents != 5 {
		t.Errorf("MaxSelectedAgents = %d, want 5", cfg.MaxSelectedAgents)
	}
	if cfg.CacheTTL() != 300*time.Second {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL())
	}
	if len(cfg.ModelFallbacks) == 0 {
		t.Error("default fallback model list is empty")
	}
}

func TestLoad_YAMLOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "provider: dummy\nlow_llm_mode: true\nagent_timeout_seconds: 10\nlisten_addr: \":9090\"\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "dummy" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if !cfg.LowLLMMode {
		t.Error("LowLLMMode not set from file")
	}
	if cfg.AgentTimeout() != 10*time.Second {
		t.Errorf("AgentTimeout = %v, want 10s", cfg.AgentTimeout())
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: openai\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGRIMIND_PROVIDER", "dummy")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Provider != "dummy" {
		t.Fatalf("Provider = %q, env should win over file", cfg.Provider)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty provider should fail validation")
	}

	cfg.Provider = "gemini"
	cfg.Temperature = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range temperature should fail validation")
	}

	cfg.Temperature = 0.4
	cfg.AgentTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero agent timeout should fail validation")
	}
}
