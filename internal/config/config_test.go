package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	relay, err := cfg.GetRelay()
	if err != nil {
		t.Fatalf("GetRelay: %v", err)
	}
	if relay.ListenAddress != "0.0.0.0:3001" || relay.Provider != "gemini" {
		t.Fatalf("unexpected relay defaults %+v", relay)
	}
	if cfg.GetGemini().ModelName != "gemini-1.5-flash" {
		t.Fatalf("unexpected gemini model %q", cfg.GetGemini().ModelName)
	}

	classifier, err := cfg.GetClassifier()
	if err != nil {
		t.Fatalf("GetClassifier: %v", err)
	}
	if classifier.AIDelay != 5*time.Second || len(classifier.AIKeywords) != 4 {
		t.Fatalf("unexpected classifier defaults %+v", classifier)
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prioritizer.yaml")
	data := []byte("classifier:\n  ai_delay: 250ms\nstorage:\n  type: memory\ncache:\n  ttl: 1h\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("PRIORITIZER_RELAY_PROVIDER", "openai")

	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.ConfigFile() != path {
		t.Fatalf("ConfigFile = %q", cfg.ConfigFile())
	}

	classifier, _ := cfg.GetClassifier()
	if classifier.AIDelay != 250*time.Millisecond {
		t.Fatalf("ai_delay = %v", classifier.AIDelay)
	}
	if cfg.GetStorage().Type != "memory" {
		t.Fatalf("storage.type = %q", cfg.GetStorage().Type)
	}
	relay, _ := cfg.GetRelay()
	if relay.Provider != "openai" {
		t.Fatalf("env override ignored, provider = %q", relay.Provider)
	}
}

func TestInvalidDuration(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.ttl", "forever")
	if _, err := NewFromViper(v).GetCache(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
