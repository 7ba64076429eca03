package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.SpeechCommand != "espeak-ng" {
		t.Fatalf("unexpected speech command %q", cfg.SpeechCommand)
	}
	if cfg.SpeechRate != 0.4 || cfg.NoiseLevel != 0 {
		t.Fatalf("unexpected audio defaults: rate %v noise %v", cfg.SpeechRate, cfg.NoiseLevel)
	}
	if cfg.ParsedWordGap() != 180*time.Millisecond {
		t.Fatalf("unexpected word gap %v", cfg.ParsedWordGap())
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearsay.yaml")
	data := []byte("listen_addr: \"0.0.0.0:9000\"\nspeech_rate: 0.5\nnoise_level: 0.3\nword_gap: 250ms\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, warnings, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	if cfg.ListenAddr != "0.0.0.0:9000" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr)
	}
	if cfg.SpeechRate != 0.5 || cfg.NoiseLevel != 0.3 {
		t.Fatalf("unexpected audio config: rate %v noise %v", cfg.SpeechRate, cfg.NoiseLevel)
	}
	if cfg.ParsedWordGap() != 250*time.Millisecond {
		t.Fatalf("unexpected word gap %v", cfg.ParsedWordGap())
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hearsay.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := Load(path); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"LISTEN_ADDR", "127.0.0.1:7070")
	t.Setenv(EnvPrefix+"SPEECH_RATE", "0.45")
	t.Setenv(EnvPrefix+"SPEECH_COMMAND", "say")
	t.Setenv(EnvPrefix+"WORD_GAP", "100ms")

	cfg, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:7070" {
		t.Fatalf("env override not applied: %q", cfg.ListenAddr)
	}
	if cfg.SpeechRate != 0.45 {
		t.Fatalf("env override not applied: %v", cfg.SpeechRate)
	}
	if cfg.SpeechCommand != "say" {
		t.Fatalf("env override not applied: %q", cfg.SpeechCommand)
	}
	if cfg.ParsedWordGap() != 100*time.Millisecond {
		t.Fatalf("env override not applied: %v", cfg.ParsedWordGap())
	}
}

func TestValidateWarnsAndFallsBack(t *testing.T) {
	t.Setenv(EnvPrefix+"SPEECH_RATE", "3.5")
	t.Setenv(EnvPrefix+"NOISE_LEVEL", "-0.2")
	t.Setenv(EnvPrefix+"WORD_GAP", "fast")

	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", warnings)
	}

	if cfg.SpeechRate != 0.4 {
		t.Fatalf("expected rate fallback 0.4, got %v", cfg.SpeechRate)
	}
	if cfg.NoiseLevel != 0 {
		t.Fatalf("expected noise fallback 0, got %v", cfg.NoiseLevel)
	}
	if cfg.ParsedWordGap() != 180*time.Millisecond {
		t.Fatalf("expected word gap fallback, got %v", cfg.ParsedWordGap())
	}
}
