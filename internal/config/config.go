// Package config handles configuration loading for red64: XDG user
// config, an upward-walking project override file, and environment
// variable binding/expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for red64.
type Config struct {
	Agents   AgentsConfig   `mapstructure:"agents"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Timeouts TimeoutsConfig `mapstructure:"timeouts"`
}

// AgentsConfig holds per-agent-kind API key settings.
type AgentsConfig struct {
	Claude AgentKeyConfig `mapstructure:"claude"`
	Gemini AgentKeyConfig `mapstructure:"gemini"`
	Codex  AgentKeyConfig `mapstructure:"codex"`
}

// AgentKeyConfig holds one agent kind's API key and default model.
type AgentKeyConfig struct {
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
}

// DefaultsConfig holds default values for a red64 run.
type DefaultsConfig struct {
	Agent   string `mapstructure:"agent"`
	Mode    string `mapstructure:"mode"`
	Sandbox bool   `mapstructure:"sandbox"`
}

// TimeoutsConfig holds the durations enforced by the Process Runner.
type TimeoutsConfig struct {
	Invocation  time.Duration `mapstructure:"invocation"`
	HealthCheck time.Duration `mapstructure:"health_check"`
	ImagePull   time.Duration `mapstructure:"image_pull"`
}

// Load resolves configuration with this precedence (highest first):
//  1. Environment variables (e.g. ANTHROPIC_API_KEY)
//  2. Project override (.red64.yaml, found by walking up from cwd)
//  3. User config (XDG config dir)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading user config: %w", err)
		}
	}

	if projectPath := findProjectConfig(); projectPath != "" {
		proj := viper.New()
		proj.SetConfigFile(projectPath)
		if err := proj.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(proj.AllSettings()); err != nil {
				return nil, fmt.Errorf("config: merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("agents.claude.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("agents.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("agents.codex.api_key", "OPENAI_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	cfg.Agents.Claude.APIKey = os.ExpandEnv(cfg.Agents.Claude.APIKey)
	cfg.Agents.Gemini.APIKey = os.ExpandEnv(cfg.Agents.Gemini.APIKey)
	cfg.Agents.Codex.APIKey = os.ExpandEnv(cfg.Agents.Codex.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file, bypassing XDG
// and project-override discovery (for tests and `--config` overrides).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling %s: %w", path, err)
	}
	cfg.Agents.Claude.APIKey = os.ExpandEnv(cfg.Agents.Claude.APIKey)
	cfg.Agents.Gemini.APIKey = os.ExpandEnv(cfg.Agents.Gemini.APIKey)
	cfg.Agents.Codex.APIKey = os.ExpandEnv(cfg.Agents.Codex.APIKey)
	return cfg, nil
}

// Save writes cfg to the user config file, creating its directory.
func Save(cfg *Config) error {
	dir := userConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.yaml"))
	v.Set("agents.claude.api_key", cfg.Agents.Claude.APIKey)
	v.Set("agents.claude.default_model", cfg.Agents.Claude.DefaultModel)
	v.Set("agents.gemini.api_key", cfg.Agents.Gemini.APIKey)
	v.Set("agents.gemini.default_model", cfg.Agents.Gemini.DefaultModel)
	v.Set("agents.codex.api_key", cfg.Agents.Codex.APIKey)
	v.Set("agents.codex.default_model", cfg.Agents.Codex.DefaultModel)
	v.Set("defaults.agent", cfg.Defaults.Agent)
	v.Set("defaults.mode", cfg.Defaults.Mode)
	v.Set("defaults.sandbox", cfg.Defaults.Sandbox)
	v.Set("timeouts.invocation", cfg.Timeouts.Invocation.String())
	v.Set("timeouts.health_check", cfg.Timeouts.HealthCheck.String())
	v.Set("timeouts.image_pull", cfg.Timeouts.ImagePull.String())

	return v.WriteConfig()
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(userConfigDir(), "config.yaml")
}

// ProjectConfigPath returns the path to the project override file, if found.
func ProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agents.claude.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("agents.gemini.default_model", "gemini-2.5-pro")
	v.SetDefault("agents.codex.default_model", "gpt-5-codex")

	v.SetDefault("defaults.agent", "claude")
	v.SetDefault("defaults.mode", "greenfield")
	v.SetDefault("defaults.sandbox", false)

	v.SetDefault("timeouts.invocation", "10m")
	v.SetDefault("timeouts.health_check", "30s")
	v.SetDefault("timeouts.image_pull", "5m")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "red64")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "red64")
	}
	return filepath.Join(home, ".config", "red64")
}

// findProjectConfig walks up from the current directory looking for
// .red64.yaml, stopping at the filesystem root.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(cwd, ".red64.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			return ""
		}
		cwd = parent
	}
}

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{Agent: "claude", Mode: "greenfield"},
		Timeouts: TimeoutsConfig{
			Invocation:  10 * time.Minute,
			HealthCheck: 30 * time.Second,
			ImagePull:   5 * time.Minute,
		},
		Agents: AgentsConfig{
			Claude: AgentKeyConfig{DefaultModel: "claude-sonnet-4-20250514"},
			Gemini: AgentKeyConfig{DefaultModel: "gemini-2.5-pro"},
			Codex:  AgentKeyConfig{DefaultModel: "gpt-5-codex"},
		},
	}
}
