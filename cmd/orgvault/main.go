package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/awnumar/memguard"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/orgvault/internal/adapter/driven/aesgcm"
	sqliteadapter "github.com/ericfisherdev/orgvault/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/orgvault/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/orgvault/internal/adapter/driving/web"
	"github.com/ericfisherdev/orgvault/internal/application"
	"github.com/ericfisherdev/orgvault/internal/config"
)

func main() {
	err := run()
	memguard.Purge()
	if err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"session_ttl", cfg.SessionTTL,
		"cookie_secure", cfg.CookieSecure,
		"allowed_origins", cfg.AllowedOrigins,
		"launch_require_admin", cfg.LaunchRequireAdmin,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", db.Path())

	// 4. Run migrations on writer connection.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version)

	// 5. Wire adapters. The cipher takes ownership of the key bytes.
	orgStore := sqliteadapter.NewOrgRepo(db)
	sessionStore := sqliteadapter.NewSessionRepo(db)

	cipher, err := aesgcm.New(cfg.EncryptionKey)
	if err != nil {
		return err
	}
	defer cipher.Destroy()

	// 6. Create the session gate and vault service.
	gate, err := application.NewSessionGate(sessionStore, cfg.AdminPassword, cfg.SessionSecret, cfg.SessionTTL, slog.Default())
	if err != nil {
		return err
	}
	vault := application.NewVaultService(orgStore, cipher, gate, cfg.LaunchRequireAdmin, slog.Default())
	if !cfg.LaunchRequireAdmin {
		slog.Warn("launch endpoint serves credentials without a session; set ORGVAULT_LAUNCH_REQUIRE_ADMIN=true to require one")
	}

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(vault, httphandler.CookieOptions{
		Secure: cfg.CookieSecure,
		MaxAge: gate.TTL(),
	}, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 8. Create web handler and register the launch route.
	webHandler := webhandler.NewHandler(vault, httphandler.SessionToken, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default(), cfg.AllowedOrigins)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	slog.Info("orgvault started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
