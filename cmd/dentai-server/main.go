package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/agent"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/assessment"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/auth"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/cases"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/config"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/db"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/events"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/llm"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/offline"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/orchestrator"
	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/scenario"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("connect db failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("migrate db failed", "error", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, scenario cache disabled", "addr", cfg.RedisAddr, "error", err)
			redisClient = nil
		}
	}

	llmProvider, err := llm.NewProvider(llm.Config{
		Provider:      strings.ToLower(cfg.LLMProvider),
		Model:         cfg.LLMModel,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		Timeout:       cfg.LLMTimeout,
	})
	if err != nil {
		logger.Error("init llm provider failed", "error", err)
		os.Exit(1)
	}

	registry := cases.NewRegistry()
	catalog, err := cases.LoadDir(cfg.CasesDir)
	if err != nil {
		logger.Error("load case catalog failed", "dir", cfg.CasesDir, "error", err)
		os.Exit(1)
	}
	registry.Replace(1, catalog)
	logger.Info("case catalog loaded", "dir", cfg.CasesDir, "cases", len(catalog))

	var engine assessment.Engine
	if cfg.AssessBaseURL != "" {
		engine = assessment.NewRemoteEngine(cfg.AssessBaseURL, cfg.AssessAPIKey, cfg.AssessTimeout)
		logger.Info("using remote assessment engine", "base_url", cfg.AssessBaseURL)
	} else {
		engine = assessment.NewRuleEngine(registry)
	}

	interpreter := agent.NewInterpreter(llmProvider, offline.NewInterpreter(), logger)
	states := scenario.NewManager(store, redisClient, logger)

	publisher := events.NewPublisher(events.Config{
		BrokerURL:   cfg.MQTTBrokerURL,
		ClientID:    cfg.MQTTClientID,
		Username:    cfg.MQTTUsername,
		Password:    cfg.MQTTPassword,
		TopicPrefix: cfg.MQTTTopicPrefix,
	}, logger)
	if publisher.Enabled() {
		if err := publisher.Start(ctx); err != nil {
			logger.Error("start mqtt publisher failed", "error", err)
			os.Exit(1)
		}
		logger.Info("outcome publisher enabled", "broker", cfg.MQTTBrokerURL)
	}

	orch := orchestrator.New(interpreter, engine, states, store, publisher, logger)
	authSvc := auth.NewService(cfg.JWTSecret)

	h := &handlers{
		orch:         orch,
		store:        store,
		registry:     registry,
		states:       states,
		authSvc:      authSvc,
		historyLimit: cfg.HistoryLimit,
		llmModel:     cfg.LLMModel,
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	r.Post("/v1/auth/register", h.register)
	r.Post("/v1/auth/login", h.login)
	r.Get("/v1/chat/status", h.chatStatus)
	r.Group(func(r chi.Router) {
		r.Use(authSvc.RequireStudent)
		r.Get("/v1/cases", h.listCases)
		r.Post("/v1/cases/{caseID}/start", h.startCase)
		r.Post("/v1/chat/send", h.chatSend)
		r.Get("/v1/chat/history/{caseID}", h.chatHistory)
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("dentai server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
}
