// internal/config/loader.go
//
// Configuration loader and hot-reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from these layers (highest
precedence last):

  1. Struct defaults from Defaults(), including the fallback webhooks.
  2. Optional `.env` file at `<root>/conf/.env`.
  3. Optional `conf/site.yaml`.
  4. The legacy build-time names VITE_N8N_WEBHOOK_CTA,
     VITE_N8N_WEBHOOK_BOOKING, and VITE_STRIPE_PUBLISHABLE_KEY.
  5. Environment variables prefixed `LEGACY_`, where `__` maps to “.”
     (e.g., `LEGACY_RATE_LIMIT__BACKEND → rate_limit.backend`).

Every string of the form `vault:<mount/path>#<key>` is then swapped for
the secret it names.  The tree is unmarshalled over the defaults,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` calls `Load()` again
and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans — root discovery, YAML read, env overlay.
  • ERROR spans — YAML parse, env overlay, secret lookup, unmarshal, and
    validation failures.
  • INFO  span  — final “config loaded” with key highlights.  Secrets and
    webhook URLs are never logged.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

// SecretReader resolves one key of a KV secret.  *vault.Client satisfies it.
type SecretReader interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

const (
	vaultPrefix = "vault:"
	secretTTL   = 10 * time.Minute
)

// viteAliases maps the original build-time variable names onto config keys.
var viteAliases = map[string]string{
	"VITE_N8N_WEBHOOK_CTA":        "webhooks.lead",
	"VITE_N8N_WEBHOOK_BOOKING":    "webhooks.booking",
	"VITE_STRIPE_PUBLISHABLE_KEY": "payment.publishable_key",
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves LEGACY_ROOT or climbs directories until a conf/ folder
// is found.  Falls back to the working directory.
func RootDir() string {
	if r := os.Getenv("LEGACY_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if fi, err := os.Stat(filepath.Join(dir, "conf")); err == nil && fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root and calls LoadFrom.  secrets may be nil when no
// value uses the vault: prefix.
func Load(ctx context.Context, secrets SecretReader) (*Config, error) {
	return LoadFrom(ctx, RootDir(), secrets)
}

// LoadFrom reads every layer under root, validates, and caches Config.
func LoadFrom(ctx context.Context, root string, secrets SecretReader) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "site.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml absent, using defaults", "file", yamlPath)
	}

	// Legacy names: VITE_N8N_WEBHOOK_CTA → webhooks.lead
	if err := k.Load(env.Provider("VITE_", ".", func(s string) string {
		return viteAliases[s]
	}), nil); err != nil {
		zap.S().Errorw("config legacy env overlay failed", "err", err)
		return nil, err
	}

	// Env overrides: LEGACY_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("LEGACY_", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, "LEGACY_"), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, secrets); err != nil {
		zap.S().Errorw("config secret lookup failed", "err", err)
		return nil, err
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if cfg.RateLimit.FilePath != "" && !filepath.IsAbs(cfg.RateLimit.FilePath) {
		cfg.RateLimit.FilePath = filepath.Join(root, cfg.RateLimit.FilePath)
	}
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"rate_limit_backend", cfg.RateLimit.Backend,
		"payments", cfg.Payment.PublishableKey != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// resolveSecrets replaces every vault: string in k with its secret value.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, secrets SecretReader) error {
	all := k.All()
	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s, ok := all[key].(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}
		if secrets == nil {
			return fmt.Errorf("%s: vault reference but no Vault client", key)
		}
		path, field, err := parseVaultRef(s)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		val, err := secrets.GetKV(ctx, path, field, secretTTL)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// parseVaultRef splits "vault:secret/legacyfilm#lead" into path and key.
func parseVaultRef(ref string) (path, key string, err error) {
	path, key, ok := strings.Cut(strings.TrimPrefix(ref, vaultPrefix), "#")
	if !ok || path == "" || key == "" {
		return "", "", errors.New("vault reference must look like vault:<mount/path>#<key>")
	}
	return path, key, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

func Reload(ctx context.Context, secrets SecretReader) error {
	_, err := Load(ctx, secrets)
	return err
}
