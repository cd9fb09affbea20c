package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Defaults.Agent != "claude" {
		t.Errorf("expected default agent 'claude', got %q", cfg.Defaults.Agent)
	}
	if cfg.Defaults.Mode != "greenfield" {
		t.Errorf("expected default mode 'greenfield', got %q", cfg.Defaults.Mode)
	}
	if cfg.Timeouts.Invocation != 10*time.Minute {
		t.Errorf("expected invocation timeout 10m, got %v", cfg.Timeouts.Invocation)
	}
	if cfg.Timeouts.HealthCheck != 30*time.Second {
		t.Errorf("expected health check timeout 30s, got %v", cfg.Timeouts.HealthCheck)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
agents:
  claude:
    api_key: test-key
    default_model: claude-opus-4-5-20251101
defaults:
  agent: gemini
  mode: brownfield
  sandbox: true
timeouts:
  invocation: 20m
  health_check: 45s
  image_pull: 10m
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Agents.Claude.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Agents.Claude.APIKey)
	}
	if cfg.Agents.Claude.DefaultModel != "claude-opus-4-5-20251101" {
		t.Errorf("expected model override, got %q", cfg.Agents.Claude.DefaultModel)
	}
	if cfg.Defaults.Agent != "gemini" {
		t.Errorf("expected default agent 'gemini', got %q", cfg.Defaults.Agent)
	}
	if !cfg.Defaults.Sandbox {
		t.Error("expected sandbox to be true")
	}
	if cfg.Timeouts.Invocation != 20*time.Minute {
		t.Errorf("expected invocation timeout 20m, got %v", cfg.Timeouts.Invocation)
	}
}

func TestLoadFromPathExpandsEnvKey(t *testing.T) {
	os.Setenv("RED64_TEST_KEY", "expanded-key")
	defer os.Unsetenv("RED64_TEST_KEY")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "agents:\n  claude:\n    api_key: ${RED64_TEST_KEY}\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Agents.Claude.APIKey != "expanded-key" {
		t.Errorf("expected expanded key, got %q", cfg.Agents.Claude.APIKey)
	}
}

func TestUserConfigDir(t *testing.T) {
	os.Setenv("XDG_CONFIG_HOME", "/custom/config")
	defer os.Unsetenv("XDG_CONFIG_HOME")

	dir := userConfigDir()
	expected := "/custom/config/red64"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}

func TestFindProjectConfigWalksUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".red64.yaml"), []byte("defaults:\n  agent: codex\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cwd, _ := os.Getwd()
	defer os.Chdir(cwd)
	if err := os.Chdir(nested); err != nil {
		t.Fatal(err)
	}

	found := findProjectConfig()
	want := filepath.Join(root, ".red64.yaml")
	if found != want {
		t.Errorf("expected %q, got %q", want, found)
	}
}
