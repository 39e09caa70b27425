package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greatwork.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.TickInterval.Duration.String() != "1m0s" {
		t.Errorf("expected default tick interval 1m, got %s", cfg.General.TickInterval.Duration)
	}
	if cfg.ReputationBounds.Min != -20 || cfg.ReputationBounds.Max != 100 {
		t.Errorf("unexpected reputation bounds: %+v", cfg.ReputationBounds)
	}
	if cfg.ConfidenceWagers["certain"].Reward != 5 {
		t.Errorf("expected certain reward 5, got %d", cfg.ConfidenceWagers["certain"].Reward)
	}
	if cfg.Roster.Min != 20 || cfg.Roster.Max != 30 {
		t.Errorf("unexpected roster bounds: %+v", cfg.Roster)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "bogus_key = true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown config key")
	}
}

func TestLoadRejectsInvalidReputationBounds(t *testing.T) {
	path := writeConfig(t, "[reputation_bounds]\nmin = 10\nmax = 5\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted reputation bounds")
	}
}

func TestDurationRoundTrip(t *testing.T) {
	path := writeConfig(t, "[general]\nllm_pause_timeout = \"90s\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.General.LLMPauseTimeout.Duration.Seconds() != 90 {
		t.Errorf("expected 90s, got %s", cfg.General.LLMPauseTimeout.Duration)
	}
}

func TestManagerReload(t *testing.T) {
	path := writeConfig(t, "")
	mgr, err := LoadManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if mgr.Get().General.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", mgr.Get().General.LogLevel)
	}
	if err := os.WriteFile(path, []byte("[general]\nlog_level = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Reload(path); err != nil {
		t.Fatal(err)
	}
	if mgr.Get().General.LogLevel != "debug" {
		t.Fatalf("expected reloaded log level debug, got %s", mgr.Get().General.LogLevel)
	}
}
