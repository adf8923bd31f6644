// Helpdesk - AI customer support chat server
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

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/ashureev/helpdesk-bot/internal/api"
	"github.com/ashureev/helpdesk-bot/internal/config"
	"github.com/ashureev/helpdesk-bot/internal/faq"
	"github.com/ashureev/helpdesk-bot/internal/logging"
	"github.com/ashureev/helpdesk-bot/internal/middleware"
	"github.com/ashureev/helpdesk-bot/internal/probe"
	"github.com/ashureev/helpdesk-bot/internal/store"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()
	slog.SetDefault(logger)

	if envErr != nil {
		slog.Info("No .env file found, using environment variables")
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"dev", cfg.IsDevelopment(),
		"store", cfg.Store.Driver,
		"api_key_set", cfg.Model.GeminiAPIKey != "",
		"api_key_preview", cfg.APIKeyPreview(),
		"model", cfg.Model.ModelName,
	)

	// Initialize dependencies.
	repo, err := store.Open(store.Options{
		Driver:      cfg.Store.Driver,
		DBPath:      cfg.Store.DBPath,
		StoragePath: cfg.Store.StoragePath,
		Logger:      logger,
	})
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			slog.Error("Failed to close repository", "error", closeErr)
		}
	}()

	if err := repo.Ping(context.Background()); err != nil {
		slog.Error("Store health check failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Store connected", "driver", cfg.Store.Driver)

	faqs := faq.Load(cfg.FAQPath, logger)

	// A missing key or an unreachable model leaves provider nil; every
	// non-FAQ turn then gets a canned reply.
	var provider agent.Provider
	gemini, err := agent.NewGeminiProvider(context.Background(), agent.GeminiConfig{
		APIKey:       cfg.Model.GeminiAPIKey,
		Models:       []string{cfg.Model.ModelName},
		Probe:        cfg.Model.Probe,
		ProbeTimeout: cfg.Model.ProbeTimeout,
	}, logger)
	if err != nil {
		slog.Warn("Generative model unavailable, using fallback responses", "error", err)
	} else {
		provider = gemini
		slog.Info("Generative model ready", "model", gemini.Model())
	}

	transcript, err := agent.NewTranscriptLogger(agent.TranscriptLogConfig{
		Enabled:   cfg.Transcript.Enabled,
		Dir:       cfg.Transcript.Dir,
		QueueSize: cfg.Transcript.QueueSize,
	}, logger)
	if err != nil {
		slog.Error("Failed to initialize transcript logger", "error", err)
		os.Exit(1)
	}

	svc := agent.NewService(agent.Config{FAQs: faqs, Provider: provider, Logger: logger})
	chat := agent.NewConversations(svc, repo, transcript, logger)
	defer func() {
		if closeErr := chat.Close(); closeErr != nil {
			slog.Error("Failed to close transcript log", "error", closeErr)
		}
	}()
	slog.Info("Support agent initialized", "faqs", svc.FAQCount(), "provider", svc.ProviderName())

	handler := api.NewHandler(chat, repo, api.Options{
		MaxBodyBytes:      cfg.MaxBodyBytes,
		RateLimitRequests: cfg.RateLimit.RequestsPerWindow,
		RateLimitWindow:   cfg.RateLimit.WindowDuration,
		OriginPatterns:    cfg.AllowedOrigins(),
		Logger:            logger,
	})
	defer handler.Close()

	// Setup router.
	r := chi.NewRouter()

	// Global middleware.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins()))

	handler.RegisterRoutes(r)

	// WriteTimeout stays 0 so WebSocket chats are not cut off.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var healthSrv *probe.Server
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			slog.Error("Failed to listen for gRPC health", "error", err, "port", cfg.GRPCPort)
			os.Exit(1)
		}
		healthSrv = probe.New(repo, 10*time.Second, logger)
		go func() {
			if err := healthSrv.Serve(lis); err != nil {
				slog.Error("gRPC health server failed", "error", err)
			}
		}()
	}

	// Start server.
	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	if healthSrv != nil {
		healthSrv.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped successfully")
}
