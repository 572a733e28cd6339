package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLINIC_DATA_FILE", "")
	t.Setenv("CLINIC_SLOT_DURATION", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	cfg := Load()
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DataFile != "consultas.json" {
		t.Fatalf("expected default data file, got %s", cfg.DataFile)
	}
	if cfg.SlotDuration != 30*time.Minute {
		t.Fatalf("expected default slot duration, got %s", cfg.SlotDuration)
	}
	if cfg.OpenAt != "08:00" || cfg.CloseAt != "18:00" {
		t.Fatalf("expected default business window, got %s-%s", cfg.OpenAt, cfg.CloseAt)
	}
	if cfg.BedrockModelID != "" {
		t.Fatalf("expected default bedrock model empty, got %s", cfg.BedrockModelID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "app.log")
	t.Setenv("CLINIC_DATA_FILE", "/var/lib/clinic/appointments.json")
	t.Setenv("CLINIC_SLOT_DURATION", "1h")
	t.Setenv("CLINIC_OPEN", "09:00")
	t.Setenv("CLINIC_CLOSE", "17:00")
	t.Setenv("GEMINI_API_KEY", "test-key")
	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.LogFile != "app.log" {
		t.Fatalf("expected log file override, got %s", cfg.LogFile)
	}
	if cfg.DataFile != "/var/lib/clinic/appointments.json" {
		t.Fatalf("expected data file override, got %s", cfg.DataFile)
	}
	if cfg.SlotDuration != time.Hour {
		t.Fatalf("expected slot duration override, got %s", cfg.SlotDuration)
	}
	if cfg.OpenAt != "09:00" || cfg.CloseAt != "17:00" {
		t.Fatalf("expected business window override, got %s-%s", cfg.OpenAt, cfg.CloseAt)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Fatalf("expected gemini key override, got %s", cfg.GeminiAPIKey)
	}
}
