package config

import (
	"os"
	"testing"

	"github.com/red64llc/red64/internal/agent"
)

func TestGetAPIKey(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)

	t.Run("from environment variable", func(t *testing.T) {
		os.Setenv("ANTHROPIC_API_KEY", "sk-ant-test-key")
		defer os.Unsetenv("ANTHROPIC_API_KEY")

		key, err := GetAPIKey(&Config{}, agent.Claude)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "sk-ant-test-key" {
			t.Errorf("expected 'sk-ant-test-key', got %q", key)
		}
	})

	t.Run("from config", func(t *testing.T) {
		os.Unsetenv("ANTHROPIC_API_KEY")

		cfg := &Config{Agents: AgentsConfig{Claude: AgentKeyConfig{APIKey: "sk-ant-config-key"}}}
		key, err := GetAPIKey(cfg, agent.Claude)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "sk-ant-config-key" {
			t.Errorf("expected 'sk-ant-config-key', got %q", key)
		}
	})

	t.Run("different agent kinds use different env vars", func(t *testing.T) {
		os.Setenv("GEMINI_API_KEY", "gemini-key")
		defer os.Unsetenv("GEMINI_API_KEY")

		key, err := GetAPIKey(&Config{}, agent.Gemini)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "gemini-key" {
			t.Errorf("expected 'gemini-key', got %q", key)
		}
	})

	t.Run("no key configured", func(t *testing.T) {
		os.Unsetenv("ANTHROPIC_API_KEY")

		_, err := GetAPIKey(&Config{}, agent.Claude)
		if err != ErrNoAPIKey {
			t.Errorf("expected ErrNoAPIKey, got %v", err)
		}
	})
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"valid key", "sk-ant-REDACTED-wxyz", "sk-ant-...wxyz"},
		{"empty key", "", "(not set)"},
		{"short key", "short", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskAPIKey(tt.key); got != tt.expected {
				t.Errorf("MaskAPIKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetAPIKeySource(t *testing.T) {
	original := os.Getenv("ANTHROPIC_API_KEY")
	defer os.Setenv("ANTHROPIC_API_KEY", original)

	t.Run("from environment", func(t *testing.T) {
		os.Setenv("ANTHROPIC_API_KEY", "test-key")
		defer os.Unsetenv("ANTHROPIC_API_KEY")

		if got := GetAPIKeySource(&Config{}, agent.Claude); got != KeySourceEnv {
			t.Errorf("expected KeySourceEnv, got %v", got)
		}
	})

	t.Run("from config", func(t *testing.T) {
		os.Unsetenv("ANTHROPIC_API_KEY")
		cfg := &Config{Agents: AgentsConfig{Claude: AgentKeyConfig{APIKey: "sk-ant-config-key"}}}
		if got := GetAPIKeySource(cfg, agent.Claude); got != KeySourceConfig {
			t.Errorf("expected KeySourceConfig, got %v", got)
		}
	})

	t.Run("no key", func(t *testing.T) {
		os.Unsetenv("ANTHROPIC_API_KEY")
		if got := GetAPIKeySource(&Config{}, agent.Claude); got != KeySourceNone {
			t.Errorf("expected KeySourceNone, got %v", got)
		}
	})
}
