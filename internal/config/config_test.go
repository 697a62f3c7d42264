package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadUsesDefaults(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("PORT", "")
	t.Setenv("MODEL_PATH", "")
	t.Setenv("FORM_VARIANT", "")
	t.Setenv("CLASSIFIER_TIMEOUT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ModelPath != "models/heart-logreg.yaml" {
		t.Fatalf("unexpected model path %q", cfg.ModelPath)
	}
	if cfg.FormVariant != "standard" {
		t.Fatalf("unexpected variant %q", cfg.FormVariant)
	}
	if cfg.ClassifierTimeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.ClassifierTimeout)
	}
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("CLASSIFIER_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed CLASSIFIER_TIMEOUT")
	}
}

func TestLoadReadsClassifierURL(t *testing.T) {
	t.Setenv("ENABLE_DB", "false")
	t.Setenv("CLASSIFIER_URL", "http://localhost:9000")
	t.Setenv("CLASSIFIER_TIMEOUT", "250ms")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ClassifierURL != "http://localhost:9000" || cfg.ClassifierTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected classifier config: %+v", cfg)
	}
}
