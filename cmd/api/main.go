// Package main is the entry point for the transit map API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/transit-map/backend/internal/config"
	"github.com/pkordes/transit-map/backend/internal/handler"
	"github.com/pkordes/transit-map/backend/internal/mapengine"
	"github.com/pkordes/transit-map/backend/internal/middleware"
	"github.com/pkordes/transit-map/backend/internal/seed"
	"github.com/pkordes/transit-map/backend/internal/service"
	"github.com/pkordes/transit-map/backend/internal/store"
	"github.com/pkordes/transit-map/backend/internal/view"
)

// maxBodyBytes caps request bodies. Line payloads are small.
const maxBodyBytes = 1 << 20

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- State ------------------------------------------------------------
	seedLine, err := seed.Load(cfg.SeedLinePath)
	if err != nil {
		slog.Error("failed to load seed line", "path", cfg.SeedLinePath, "error", err)
		os.Exit(1)
	}
	if err := service.ValidateLine(seedLine); err != nil {
		slog.Error("invalid seed line", "error", err)
		os.Exit(1)
	}
	st := store.New(logger)

	// --- Map --------------------------------------------------------------
	// The host asks for its map exactly once; keep the concrete engine so the
	// HTTP layer can read from the same instance.
	fetcher := mapengine.NewHTTPFetcher(cfg.StyleTimeout)
	var engine *mapengine.Map
	factory := func(opts mapengine.Options) view.Engine {
		engine = mapengine.New(opts, fetcher, logger)
		return engine
	}
	host := view.NewHost(view.FromStore(st), seedLine, factory, view.StyleURL(cfg.StyleURL, cfg.MapTilerAPIKey), logger)
	host.Init()

	hostCtx, stopHost := context.WithCancel(context.Background())
	hostDone := make(chan struct{})
	go func() {
		defer close(hostDone)
		if err := host.Run(hostCtx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("view host stopped", "error", err)
		}
	}()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	api := handler.NewServer(service.NewLineService(st), engine, logger)
	r.Mount("/", api.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// The event stream lifts its own write deadline.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return hostCtx },
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "style", cfg.StyleURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	// Cancelling the host context also ends open event streams, which
	// Shutdown would otherwise wait on.
	stopHost()
	<-hostDone

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
