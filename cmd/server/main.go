package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"civicbriefs/internal/adapters/civicapi"
	emailPkg "civicbriefs/internal/adapters/email"
	web "civicbriefs/internal/adapters/http"
	"civicbriefs/internal/adapters/http/perf"
	"civicbriefs/internal/adapters/storage"
	"civicbriefs/internal/adapters/storage/profile"
	"civicbriefs/internal/application/tabs"
	"civicbriefs/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, config.ErrHelp) {
			return
		}
		slog.Error("startup_failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
	for _, name := range cfg.Generated {
		slog.Warn("config_secret_generated", "key", name, "note", "stored sessions will not survive a restart")
	}

	strategy, err := tabs.ParseStrategy(cfg.Nav.Strategy)
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database_ready", "path", cfg.DB.Path, "schema", storage.LatestSchemaVersion())

	// Performance instrumentation: wrap DB with timing, share the collector with the API client
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	profiles, err := profile.NewSealedStore(profile.NewSQLiteStore(timedDB), cfg.SessionKey(), profile.KeyToken)
	if err != nil {
		return fmt.Errorf("profile store: %w", err)
	}

	api, err := civicapi.New(civicapi.Config{
		BaseURL:        cfg.API.BaseURL,
		Recorder:       collector,
		SlowUpstreamMs: cfg.SlowUpstreamMs,
	})
	if err != nil {
		return err
	}

	var mailer emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		mailer = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
		slog.Info("email_sender", "kind", "resend")
	} else {
		mailer = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender", "kind", "noop", "note", "email.resend_key is not set; delivery is disabled")
		} else {
			slog.Info("email_sender", "kind", "noop")
		}
	}

	srv, err := web.NewServer(web.Config{
		Strategy:       strategy,
		CSRFKey:        cfg.CSRFKey(),
		Secure:         cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins(),
		RateLimit:      cfg.RateLimit,
		SlowRequestMs:  cfg.SlowRequestMs,
		EmailFrom:      cfg.Email.From,
	}, web.Deps{API: api, Profiles: profiles, Collector: collector, Mailer: mailer})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"api", api.BaseURL(), "nav", string(strategy))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server_stopped")
	return nil
}
