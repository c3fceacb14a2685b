package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_BOT_USERNAME", "testbot")
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_BOT_USERNAME", "testbot")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing TELEGRAM_BOT_TOKEN")
	}
}

func TestLoadRequiresUsername(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_BOT_USERNAME", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing TELEGRAM_BOT_USERNAME")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineMoveTimeMS != 2000 {
		t.Errorf("EngineMoveTimeMS = %d, want 2000", cfg.EngineMoveTimeMS)
	}
	if cfg.BoardSize != 8 {
		t.Errorf("BoardSize = %d, want 8", cfg.BoardSize)
	}
	if cfg.BoardExportURL == "" {
		t.Error("BoardExportURL default missing")
	}
	if len(cfg.SpeechLocales) != 2 || cfg.SpeechLocales[0] != "tr" || cfg.SpeechLocales[1] != "en" {
		t.Errorf("SpeechLocales = %v, want [tr en]", cfg.SpeechLocales)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENGINE_MOVE_TIME_MS", "500")
	t.Setenv("BOARD_SIZE", "6")
	t.Setenv("SPEECH_LOCALES", "en, de")
	t.Setenv("SESSION_TTL", "30m")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EngineMoveTimeMS != 500 {
		t.Errorf("EngineMoveTimeMS = %d, want 500", cfg.EngineMoveTimeMS)
	}
	if cfg.BoardSize != 6 {
		t.Errorf("BoardSize = %d, want 6", cfg.BoardSize)
	}
	if len(cfg.SpeechLocales) != 2 || cfg.SpeechLocales[1] != "de" {
		t.Errorf("SpeechLocales = %v, want [en de]", cfg.SpeechLocales)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
}

func TestLoadSessionTTLSeconds(t *testing.T) {
	setRequired(t)
	t.Setenv("SESSION_TTL", "120")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SessionTTL != 2*time.Minute {
		t.Errorf("SessionTTL = %v, want 2m", cfg.SessionTTL)
	}
}
