// cmd/web/main.go
//
// legacyfilm – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Start the daily rotating logger (tees to console in a TTY).
//
//  2. Connect to Vault when VAULT_ADDR is set, so `vault:` config values
//     resolve.
//
//  3. Load and validate configuration.
//
//  4. Open the rate-limit store (memory, file, or MySQL with migration).
//
//  5. Open the optional GeoLite2 database.
//
//  6. Build webhook submitters, the payment bootstrap, and the router.
//
//  7. Serve until SIGINT or SIGTERM, then shut down gracefully.  SIGHUP
//     reloads configuration; listener and middleware settings still need a
//     restart.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/legacyfilm/internal/config"
	"github.com/yanizio/legacyfilm/internal/database"
	"github.com/yanizio/legacyfilm/internal/form"
	"github.com/yanizio/legacyfilm/internal/logger"
	"github.com/yanizio/legacyfilm/internal/message"
	"github.com/yanizio/legacyfilm/internal/ratelimit"
	"github.com/yanizio/legacyfilm/internal/requestinfo"
	"github.com/yanizio/legacyfilm/internal/server"
	"github.com/yanizio/legacyfilm/internal/vault"
	"github.com/yanizio/legacyfilm/internal/view"
	"github.com/yanizio/legacyfilm/internal/web"
)

const shutdownGrace = 20 * time.Second

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "legacyfilm:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := config.RootDir()
	log, err := logger.New(logger.Options{
		Root:  root,
		Tee:   runningInTTY(),
		Level: os.Getenv("LEGACY_LOG_LEVEL"),
	})
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 1.  Secrets and configuration ──────────────────────────────────
	//
	var secrets config.SecretReader
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New(ctx)
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		secrets = cli
	}

	cfg, err := config.LoadFrom(ctx, root, secrets)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	//
	// ── 2.  Rate-limit store ───────────────────────────────────────────
	//
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("rate-limit store: %w", err)
	}
	defer closeStore()

	//
	// ── 3.  Optional geo database ──────────────────────────────────────
	//
	var geo requestinfo.GeoLookup
	if cfg.Geo.DBPath != "" {
		rdr, err := requestinfo.OpenGeo(cfg.Geo.DBPath)
		if err != nil {
			log.Warnw("geo database unavailable, continuing without geo", "path", cfg.Geo.DBPath, "err", err)
		} else {
			defer rdr.Close()
			geo = rdr
		}
	}

	//
	// ── 4.  Outbound channels and router ───────────────────────────────
	//
	lead := &message.Webhook{Name: form.PayloadLead, URL: cfg.Webhooks.Lead}
	booking := &message.Webhook{Name: form.PayloadBooking, URL: cfg.Webhooks.Booking}
	deps := web.Deps{
		Store:   store,
		Lead:    lead,
		Booking: booking,
		Tokens:  form.NewTokens([]byte(cfg.Forms.TokenSecret)),
		Geo:     geo,
		Views:   view.New(filepath.Join(cfg.Paths.Root, "templates")),
	}
	if cfg.Payment.PublishableKey != "" {
		deps.Payments = &message.PaymentIntents{Webhook: &message.Webhook{Name: "payment", URL: cfg.Webhooks.Booking}}
	}
	srv := server.New(cfg.HTTP.ListenAddr, web.NewRouter(deps), cfg.Forms.SubmitTimeout)

	//
	// ── 5.  Serve, reload, and shut down ───────────────────────────────
	//
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		log.Infow("shutting down")
		return srv.Shutdown(sctx)
	})

	g.Go(func() error {
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if err := config.Reload(gctx, secrets); err != nil {
					log.Errorw("config reload failed, keeping previous", "err", err)
					continue
				}
				log.Infow("config reloaded")
			}
		}
	})

	return g.Wait()
}

// openStore builds the configured limiter store and its cleanup.
func openStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, func(), error) {
	switch cfg.RateLimit.Backend {
	case "file":
		zap.S().Infow("rate-limit store", "backend", "file", "path", cfg.RateLimit.FilePath)
		return ratelimit.NewFileStore(cfg.RateLimit.FilePath), func() {}, nil

	case "mysql":
		db, err := database.Open(ctx, cfg.RateLimit.DSN)
		if err != nil {
			return nil, nil, err
		}
		s := ratelimit.NewSQLStore(db)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		zap.S().Infow("rate-limit store", "backend", "mysql")
		return s, func() { db.Close() }, nil

	default:
		zap.S().Infow("rate-limit store", "backend", "memory", "keys", cfg.RateLimit.MemoryKeys)
		return ratelimit.NewMemoryStore(cfg.RateLimit.MemoryKeys), func() {}, nil
	}
}
