// Package main is the entry point for the voice relay server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/internal/comms"
	"github.com/drew-ai/voice-relay/internal/config"
	"github.com/drew-ai/voice-relay/internal/events"
	"github.com/drew-ai/voice-relay/internal/handler"
	"github.com/drew-ai/voice-relay/internal/llm"
	"github.com/drew-ai/voice-relay/internal/middleware"
	"github.com/drew-ai/voice-relay/internal/prompt"
	"github.com/drew-ai/voice-relay/internal/relay"
	"github.com/drew-ai/voice-relay/internal/session"
	"github.com/drew-ai/voice-relay/internal/tools"
	"github.com/drew-ai/voice-relay/pkg/logger"
	"github.com/drew-ai/voice-relay/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting voice relay server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "voice-relay", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Lifecycle event publishing is optional; the relay runs without it.
	var (
		eventsClient *events.Client
		publisher    relay.Publisher
	)
	if cfg.NATSURL != "" {
		eventsClient, err = events.Connect(events.Config{URL: cfg.NATSURL, Token: cfg.NATSToken}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer eventsClient.Close()

		p, err := events.NewPublisher(ctx, eventsClient)
		if err != nil {
			log.Error("failed to ensure call stream", zap.Error(err))
			os.Exit(1)
		}
		publisher = p
	}

	apiKey := cfg.OpenAIAPIKey
	if llm.Provider(cfg.DefaultLLM) == llm.ProviderAnthropic {
		apiKey = cfg.AnthropicAPIKey
	}
	llmClient, err := llm.NewClient(llm.Provider(cfg.DefaultLLM), apiKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	commsClient := comms.NewClient(comms.Config{
		BackendURL:        cfg.BackendURL,
		CallAPIURL:        cfg.CallAPIURL,
		CallAPIKey:        cfg.CallAPIKey,
		SummaryMaxRetries: cfg.SummaryMaxRetries,
		SummaryRetryWait:  cfg.SummaryRetryWait,
	}, log)

	invoker := tools.NewInvoker(tools.Config{
		BackendURL:      cfg.BackendURL,
		PlacesAPIURL:    cfg.PlacesAPIURL,
		PlacesAPIKey:    cfg.PlacesAPIKey,
		PropertyAPI1URL: cfg.PropertyAPI1URL,
		PropertyAPI1Key: cfg.PropertyAPI1Key,
		PropertyAPI2URL: cfg.PropertyAPI2URL,
		PropertyAPI2Key: cfg.PropertyAPI2Key,
	}, tools.NewMemoryCache(), log)

	definitions := tools.Definitions()
	sessionFactory := func() *session.Session {
		engine := session.NewEngine(llmClient, invoker, definitions, cfg.Model, log)
		return session.New(session.Config{AssistantName: cfg.AssistantName},
			engine, prompt.NewAssembler(), commsClient, log)
	}

	relayHandler := relay.NewHandler(relay.Config{
		HeartbeatInterval: cfg.HeartbeatInterval,
		ReceiveTimeout:    cfg.ReceiveTimeout,
	}, sessionFactory, publisher, log)

	healthHandler := handler.NewHealthHandler(eventsClient)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS())

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/llm-websocket", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.With(middleware.ValidateCallID).Get("/{call_id}", relayHandler.HandleCall)
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
