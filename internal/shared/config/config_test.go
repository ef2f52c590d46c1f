package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ENV", "PORT", "AUDIT_STORE", "CORS_ALLOW_ORIGINS", "LOG_LEVEL", "SESSION_EVENTS_QUEUE_URL"} {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())

	cfg := Load()
	if cfg.Env != "dev" || cfg.Port != "8080" || cfg.AuditStoreType != "local" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsLocal() {
		t.Fatalf("dev should be local")
	}
	if cfg.SessionEventsQueueURL != "" {
		t.Fatalf("queue should be unset by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("AUDIT_STORE", "S3")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DECISION_RULES_FILE", "/etc/plan/rules.yaml")

	cfg := Load()
	if cfg.Env != "production" || cfg.IsLocal() {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.AuditStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.AuditStoreType)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowOrigin, want) {
		t.Fatalf("expected %v, got %v", want, cfg.CORSAllowOrigin)
	}
	if cfg.DecisionRulesFile != "/etc/plan/rules.yaml" {
		t.Fatalf("unexpected rules file %q", cfg.DecisionRulesFile)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nPLAN_TEST_KEY=\"quoted\"\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("PLAN_TEST_KEY", "")

	loadEnvFiles(filepath.Join(dir, "missing"), path)
	if got := os.Getenv("PLAN_TEST_KEY"); got != "quoted" {
		t.Fatalf("expected quoted, got %q", got)
	}
}

func TestRateLimitsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RATE_LIMIT_READ_PER_MINUTE", "0")
	t.Setenv("RATE_LIMIT_WRITE_PER_MINUTE", "not-a-number")

	cfg := Load()
	if cfg.ReadRateLimitPerMinute != 0 {
		t.Fatalf("expected read limit disabled, got %d", cfg.ReadRateLimitPerMinute)
	}
	if cfg.WriteRateLimitPerMinute != 30 {
		t.Fatalf("expected default write limit, got %d", cfg.WriteRateLimitPerMinute)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Setenv("PWD", dir)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
