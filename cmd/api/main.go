package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ecomarket-assistant/internal/agent"
	httptransport "github.com/spec-kit/ecomarket-assistant/internal/api/http"
	"github.com/spec-kit/ecomarket-assistant/internal/api/http/handlers"
	"github.com/spec-kit/ecomarket-assistant/internal/auth"
	"github.com/spec-kit/ecomarket-assistant/internal/classifier"
	"github.com/spec-kit/ecomarket-assistant/internal/completion"
	"github.com/spec-kit/ecomarket-assistant/internal/config"
	"github.com/spec-kit/ecomarket-assistant/internal/events"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/memory"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/persistence"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
	"github.com/spec-kit/ecomarket-assistant/internal/rag"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
	"github.com/spec-kit/ecomarket-assistant/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var ticketStore repository.TicketStore
	if pg.Pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		ticketStore = repository.NewTicketStore(pg.Pool)
	} else {
		ticketStore = repository.NewMemoryTicketStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var sessionStore repository.SessionMemoryStore
	if redis.Client != nil {
		sessionStore = repository.NewRedisSessionMemory(redis.Client)
	} else {
		sessionStore = repository.NewInprocSessionMemory()
	}

	// Absent externals leave their ports nil; every consumer degrades to a
	// deterministic fallback instead of failing the turn.
	var searcher index.Searcher
	if cfg.Weaviate.Host != "" {
		weaviateIdx, err := index.NewWeaviateIndex(cfg.Weaviate, logger)
		if err != nil {
			logger.Warn("weaviate unavailable, retrieval degraded", zap.Error(err))
		} else {
			searcher = weaviateIdx
		}
	} else {
		logger.Warn("WEAVIATE_HOST not provided; retrieval degraded")
	}

	var completionClient completion.Client
	if cfg.OpenAI.APIKey != "" {
		completionClient = completion.NewOpenAIClient(cfg.OpenAI, logger)
	} else {
		logger.Warn("OPENAI_API_KEY not provided; deterministic fallbacks active")
	}

	tracer := observability.NewTracer(cfg.Trace.BufferSize)
	metrics := observability.NewMetrics()

	retryPolicy := repository.RetryPolicy{
		Attempts: cfg.Store.RetryAttempts,
		Backoff:  cfg.Store.RetryBackoff(),
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger)

	cls := classifier.New(tracer)
	matcher := products.NewMatcher(searcher, tracer, cfg.Matcher.SimilarityThreshold)
	responder := rag.NewResponder(cls, matcher, searcher, completionClient, tracer, cfg.OpenAI.ResponseTemperature)
	ticketTools := tickets.NewTools(ticketStore, tracer, retryPolicy).WithEvents(dispatcher)
	orchestrator := agent.NewOrchestrator(responder, ticketTools, completionClient, tracer, cfg.OpenAI.ReasoningTemperature)
	synthesizer := agent.NewSynthesizer(completionClient, tracer, cfg.OpenAI.ResponseTemperature)
	memoryService := memory.NewService(sessionStore, tracer, cfg.Memory.TTL())
	coordinator := agent.NewCoordinator(orchestrator, synthesizer, memoryService, tracer)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authenticator, err := auth.NewAuthenticator(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword, cfg.Auth.BcryptCost, tokens)
	if err != nil {
		logger.Fatal("failed to prepare admin credentials", zap.Error(err))
	}
	if !authenticator.Enabled() {
		logger.Warn("ADMIN_PASSWORD not provided; admin panel login disabled")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, searcher, completionClient != nil),
		Chat:           handlers.NewChatHandler(coordinator),
		Tools:          handlers.NewToolsHandler(ticketTools),
		Admin:          handlers.NewAdminHandler(authenticator, tracer, ticketStore),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
