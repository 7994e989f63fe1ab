// Package main runs the chess move server: a small JSON API that answers
// with one move per request, random or from a per-request UCI engine process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessmove/internal/config"
	"chessmove/internal/engine"
	"chessmove/internal/logx"
	"chessmove/internal/server/http"
	"chessmove/internal/server/service"
	"chessmove/internal/server/webserver"

	"github.com/gofiber/fiber/v2"
)

const (
	gracefulShutdownTimeout = time.Second * 5
	envFile                 = ".env"
)

func main() {
	cfg, err := config.Load(os.Args[1:], envFile)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	log := logx.NewLogger(cfg.LogLevel)

	// The web UI app is built first so a bad -web-dir fails before any PID file exists
	var webApp *fiber.App
	if cfg.Serve {
		webApp, err = webserver.NewApp(cfg.WebDir, "http://"+cfg.APIAddr(), nil)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up web UI server")
		}
	}

	// Manage PID file if requested
	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", cfg.PIDPath).Bool("lock", cfg.PIDLock).Msg("PID file created")
	}

	// 1. Engine runner: one process per engine-backed request, nothing pooled
	runner := engine.NewRunner(cfg.Engine, log)

	// 2. Move service
	svc := service.New(runner, log)

	// 3. Fiber app
	app := http.NewFiberApp(svc, http.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
	})

	apiAddr := cfg.APIAddr()

	go func() {
		log.Info().
			Str("addr", "http://"+apiAddr).
			Str("engine", cfg.Engine.Path).
			Dur("move_time", cfg.Engine.MoveTime).
			Strs("origins", cfg.AllowedOrigins).
			Int("rate_limit", cfg.RateLimit).
			Bool("dev", cfg.Dev).
			Msg("chess move server starting")

		if err := app.Listen(apiAddr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	// 4. Web UI server (optional)
	if webApp != nil {
		webAddr := fmt.Sprintf("%s:%d", cfg.WebHost, cfg.WebPort)
		go func() {
			log.Info().
				Str("addr", "http://"+webAddr).
				Str("dir", cfg.WebDir).
				Str("api", "http://"+apiAddr).
				Msg("web UI server starting")

			if err := webApp.Listen(webAddr); err != nil {
				log.Error().Err(err).Msg("web UI server error")
			}
		}()
	}

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	// In-flight requests finish and release their engine processes before this returns
	if err := shutdownAll(shutdownCtx, app, webApp); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// shutdownAll gracefully stops every non-nil app, reporting all failures
func shutdownAll(ctx context.Context, apps ...*fiber.App) error {
	var errs []error
	for _, a := range apps {
		if a == nil {
			continue
		}
		if err := a.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
