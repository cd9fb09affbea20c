// Package config provides API key management utilities.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/red64llc/red64/internal/agent"
)

// ErrNoAPIKey is returned when no API key is configured for an agent kind.
var ErrNoAPIKey = errors.New("config: no API key configured")

// GetAPIKey returns the API key for kind, checking the environment
// first and falling back to the config file.
func GetAPIKey(cfg *Config, kind agent.Kind) (string, error) {
	envName, slot := lookup(cfg, kind)
	if envName == "" {
		return "", fmt.Errorf("config: unknown agent kind %q", kind)
	}

	if key := os.Getenv(envName); key != "" {
		return key, nil
	}

	if slot != nil && slot.APIKey != "" {
		key := os.ExpandEnv(slot.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

func lookup(cfg *Config, kind agent.Kind) (string, *AgentKeyConfig) {
	var slot *AgentKeyConfig
	if cfg != nil {
		switch kind {
		case agent.Claude:
			slot = &cfg.Agents.Claude
		case agent.Gemini:
			slot = &cfg.Agents.Gemini
		case agent.Codex:
			slot = &cfg.Agents.Codex
		}
	}
	switch kind {
	case agent.Claude:
		return "ANTHROPIC_API_KEY", slot
	case agent.Gemini:
		return "GEMINI_API_KEY", slot
	case agent.Codex:
		return "OPENAI_API_KEY", slot
	default:
		return "", nil
	}
}

// MaskAPIKey returns a masked version of key for display: its first 7
// characters and last 4, with the middle elided.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}

// KeySource names where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// GetAPIKeySource reports where kind's API key was sourced from.
func GetAPIKeySource(cfg *Config, kind agent.Kind) KeySource {
	envName, slot := lookup(cfg, kind)
	if envName != "" && os.Getenv(envName) != "" {
		return KeySourceEnv
	}
	if slot != nil && slot.APIKey != "" {
		key := os.ExpandEnv(slot.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return KeySourceConfig
		}
	}
	return KeySourceNone
}
