package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Lin-Jiong-HDU/nlsh/internal/session"
)

func TestGetConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}

	expected := filepath.Join(home, NlshDirName)
	if dir != expected {
		t.Errorf("Expected %s, got %s", expected, dir)
	}
}

func TestInitConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := InitConfig()
	if err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	dir := filepath.Join(home, NlshDirName)
	if cfg.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", cfg.Dir(), dir)
	}
	if cfg.AI.Provider != ProviderOllama {
		t.Errorf("Expected provider 'ollama', got '%s'", cfg.AI.Provider)
	}
	if cfg.AI.Model != "phi" {
		t.Errorf("Expected model 'phi', got '%s'", cfg.AI.Model)
	}
	if cfg.AI.TimeoutDuration() != 10*time.Second {
		t.Errorf("Expected 10s AI timeout, got %v", cfg.AI.TimeoutDuration())
	}
	if cfg.Interpret.LowFloor != 0.3 || cfg.Interpret.AcceptThreshold != 0.6 || cfg.Interpret.MaxSuggestions != 3 {
		t.Errorf("Unexpected interpret defaults: %+v", cfg.Interpret)
	}
	if cfg.Mode() != session.Beginner {
		t.Errorf("Expected beginner mode, got %s", cfg.Mode())
	}
	if cfg.Backup.Dir != filepath.Join(dir, "backups") {
		t.Errorf("Unexpected backup dir %s", cfg.Backup.Dir)
	}
	if !cfg.Plugins.Enabled || cfg.Plugins.Dir != filepath.Join(dir, "plugins") {
		t.Errorf("Unexpected plugins config %+v", cfg.Plugins)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Expected error log level, got %s", cfg.Logging.Level)
	}
	if cfg.HistoryFile() != filepath.Join(dir, "history") {
		t.Errorf("Unexpected history file %s", cfg.HistoryFile())
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()

	content := `
ai:
  provider: OpenAI
  model: gpt-4o-mini
session:
  default_mode: expert
backup:
  dir: ~/snapshots
security:
  protected_paths:
    - /srv/data
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NLSH_AI_MODEL", "gpt-4.1")
	t.Setenv("NLSH_INTERPRET_LOW_FLOOR", "0.2")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.AI.Provider != ProviderOpenAI {
		t.Errorf("Expected normalized provider 'openai', got %q", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gpt-4.1" {
		t.Errorf("Expected env override of model, got %q", cfg.AI.Model)
	}
	if cfg.Interpret.LowFloor != 0.2 {
		t.Errorf("Expected env override of low_floor, got %g", cfg.Interpret.LowFloor)
	}
	if cfg.Mode() != session.Expert {
		t.Errorf("Expected expert mode, got %s", cfg.Mode())
	}
	if cfg.Backup.Dir != filepath.Join(home, "snapshots") {
		t.Errorf("Expected ~ expanded backup dir, got %s", cfg.Backup.Dir)
	}
	if len(cfg.Security.ProtectedPaths) != 1 || cfg.Security.ProtectedPaths[0] != "/srv/data" {
		t.Errorf("Unexpected protected paths %v", cfg.Security.ProtectedPaths)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "ai: [unterminated"},
		{"threshold order", "interpret:\n  low_floor: 0.7\n  accept_threshold: 0.5"},
		{"threshold above one", "interpret:\n  accept_threshold: 1.5"},
		{"no suggestions", "interpret:\n  max_suggestions: 0"},
		{"unknown provider", "ai:\n  provider: mystery"},
		{"unknown mode", "session:\n  default_mode: guru"},
		{"unknown dialect", "shell:\n  dialect: fish"},
		{"bad level", "logging:\n  level: loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(dir); err == nil {
				t.Error("Expected LoadConfig to fail")
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.Session.DefaultMode = string(session.Safe)
	cfg.AI.Model = "llama3"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	configPath := filepath.Join(dir, ConfigFileName+"."+ConfigFileType)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	reloaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig after save failed: %v", err)
	}
	if reloaded.Mode() != session.Safe {
		t.Errorf("Expected saved mode safe, got %s", reloaded.Mode())
	}
	if reloaded.AI.Model != "llama3" {
		t.Errorf("Expected saved model llama3, got %s", reloaded.AI.Model)
	}
}
