package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetKV(_ context.Context, path, key string, _ time.Duration) (string, error) {
	v, ok := f[path+"#"+key]
	if !ok {
		return "", errors.New("secret not found")
	}
	return v, nil
}

func writeSite(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(root, "conf", "site.yaml"), []byte(yaml), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestLoadDefaults(t *testing.T) {
	root := writeSite(t, "")
	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Webhooks.Lead != FallbackLeadWebhook || cfg.Webhooks.Booking != FallbackBookingWebhook {
		t.Fatalf("fallback webhooks not applied: %+v", cfg.Webhooks)
	}
	if cfg.RateLimit.Max != 3 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if cfg.Forms.SubmitTimeout != 15*time.Second {
		t.Fatalf("submit timeout = %v", cfg.Forms.SubmitTimeout)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("root = %q", cfg.Paths.Root)
	}
	if want := filepath.Join(root, "data", "ratelimit.json"); cfg.RateLimit.FilePath != want {
		t.Fatalf("file path = %q, want %q", cfg.RateLimit.FilePath, want)
	}
	if Get() != cfg {
		t.Fatal("Get did not return the cached config")
	}
}

func TestLoadYAMLAndEnvPrecedence(t *testing.T) {
	root := writeSite(t, `
http:
  listen_addr: "127.0.0.1:9000"
rate_limit:
  max: 5
  window: 30s
booking:
  timezone: America/New_York
webhooks:
  lead: https://hooks.example.com/yaml-lead
`)
	t.Setenv("VITE_N8N_WEBHOOK_CTA", "https://hooks.example.com/vite-lead")
	t.Setenv("VITE_STRIPE_PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("LEGACY_RATE_LIMIT__MAX", "7")

	cfg, err := LoadFrom(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.HTTP.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("listen addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.RateLimit.Max != 7 {
		t.Fatalf("env did not override yaml: max = %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("window = %v", cfg.RateLimit.Window)
	}
	if cfg.Webhooks.Lead != "https://hooks.example.com/vite-lead" {
		t.Fatalf("legacy name did not override yaml: %q", cfg.Webhooks.Lead)
	}
	if cfg.Webhooks.Booking != FallbackBookingWebhook {
		t.Fatalf("booking webhook = %q", cfg.Webhooks.Booking)
	}
	if cfg.Payment.PublishableKey != "pk_test_123" {
		t.Fatalf("publishable key = %q", cfg.Payment.PublishableKey)
	}
	if cfg.Booking.Location().String() != "America/New_York" {
		t.Fatalf("location = %v", cfg.Booking.Location())
	}
}

func TestLoadVaultReferences(t *testing.T) {
	root := writeSite(t, `
forms:
  token_secret: "vault:secret/legacyfilm#token"
`)
	secrets := fakeSecrets{"secret/legacyfilm#token": "s3cr3t"}

	cfg, err := LoadFrom(context.Background(), root, secrets)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Forms.TokenSecret != "s3cr3t" {
		t.Fatalf("token secret = %q", cfg.Forms.TokenSecret)
	}

	if _, err := LoadFrom(context.Background(), root, nil); err == nil {
		t.Fatal("vault reference without a client should fail")
	}
	if _, err := LoadFrom(context.Background(), root, fakeSecrets{}); err == nil {
		t.Fatal("missing secret should fail")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad backend", "rate_limit:\n  backend: redis\n", "RateLimit.Backend"},
		{"mysql needs dsn", "rate_limit:\n  backend: mysql\n", "RateLimit.DSN"},
		{"bad webhook", "webhooks:\n  lead: not-a-url\n", "Webhooks.Lead"},
		{"bad zone", "booking:\n  timezone: Mars/Olympus\n", "Booking.Timezone"},
		{"zero max", "rate_limit:\n  max: 0\n", "RateLimit.Max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), writeSite(t, tt.yaml), nil)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestParseVaultRef(t *testing.T) {
	p, k, err := parseVaultRef("vault:kv/app/web#lead")
	if err != nil || p != "kv/app/web" || k != "lead" {
		t.Fatalf("got %q %q %v", p, k, err)
	}
	for _, bad := range []string{"vault:kv/app", "vault:#k", "vault:kv/app#"} {
		if _, _, err := parseVaultRef(bad); err == nil {
			t.Fatalf("%q accepted", bad)
		}
	}
}

func TestRootDirFromEnv(t *testing.T) {
	t.Setenv("LEGACY_ROOT", "/srv/legacyfilm")
	if got := RootDir(); got != "/srv/legacyfilm" {
		t.Fatalf("rootDir = %q", got)
	}
}
