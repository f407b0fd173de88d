// Package main runs the ToolsHub API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	app "github.com/ahan30/mindsaidurai-tools/internal/app"
	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/internal/app/httpapi"
	"github.com/ahan30/mindsaidurai-tools/internal/app/metrics"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage/postgres"
	"github.com/ahan30/mindsaidurai-tools/internal/config"
	"github.com/ahan30/mindsaidurai-tools/internal/middleware"
	"github.com/ahan30/mindsaidurai-tools/internal/platform/database"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.LoggingConfig{Level: cfg.Logging.Level, Format: cfg.Logging.Format}).Named("server")

	verifier, err := auth.NewHMACVerifier(cfg.Auth.TokenSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	if err != nil {
		return fmt.Errorf("configure token verifier: %w", err)
	}

	stores := app.Stores{}
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		if err := database.Migrate(db); err != nil {
			return err
		}

		store := postgres.New(db)
		stores = app.Stores{
			Users:      store,
			Categories: store,
			Tools:      store,
			Usage:      store,
			Favorites:  store,
			Reviews:    store,
			AIRequests: store,
			Sessions:   store,
		}
		log.Info("connected to postgres")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage")
	}

	application, err := app.New(stores, app.Options{
		Verifier:      verifier,
		SessionTTL:    cfg.Session.TTL,
		CookieName:    cfg.Session.CookieName,
		SecureCookie:  cfg.Session.Secure,
		SweepInterval: cfg.Session.SweepInterval,
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := application.Stop(stopCtx); err != nil {
			log.WithError(err).Warn("application shutdown incomplete")
		}
	}()

	cors := middleware.NewCORSMiddleware(cfg.CORS.Origins())
	handler := cors.Handler(metrics.InstrumentHandler(httpapi.NewHandler(application, log.Named("httpapi"))))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Info("server stopped")
	return nil
}
