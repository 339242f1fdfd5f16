package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carebridge/caretriage/internal/adapters/cache"
	"github.com/carebridge/caretriage/internal/adapters/database"
	"github.com/carebridge/caretriage/internal/adapters/events"
	"github.com/carebridge/caretriage/internal/adapters/providers/voice"
	"github.com/carebridge/caretriage/internal/adapters/search"
	"github.com/carebridge/caretriage/internal/api/handlers"
	"github.com/carebridge/caretriage/internal/api/routes"
	"github.com/carebridge/caretriage/internal/application/services"
	"github.com/carebridge/caretriage/internal/domain/providers"
	"github.com/carebridge/caretriage/internal/domain/repositories"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/openai"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/postgres"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/redis"
	"github.com/carebridge/caretriage/internal/infrastructure/clients/typesense"
	"github.com/carebridge/caretriage/internal/infrastructure/notifications"
	"github.com/carebridge/caretriage/internal/infrastructure/observability"
	"github.com/carebridge/caretriage/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			log.Println("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - locks and live updates degrade gracefully
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	// Initialize Typesense client
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Printf("Warning: Failed to initialize Typesense client: %v", err)
		typesenseClient = nil
	} else {
		log.Println("Typesense client initialized successfully")
	}

	// Initialize adapters
	batchAdapter := database.NewBatchAdapter(pgClient)
	promptAdapter := database.NewPatientPromptAdapter(pgClient)
	callHistoryAdapter := database.NewCallHistoryAdapter(pgClient)

	var searchRepo repositories.PatientSearchRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		// Ensure schema exists
		if err := adapter.InitSchema(context.Background()); err != nil {
			log.Printf("Warning: Failed to init Typesense schema: %v", err)
		}
		searchRepo = adapter
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize providers
	var promptProvider providers.PromptGenerationProvider
	if cfg.OpenAI.APIKey == "" {
		log.Fatalf("OPENAI_API_KEY is required for prompt generation")
	}
	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}
	promptProvider = openaiClient

	voiceProvider := voice.NewVoiceProvider(cfg.Voice)

	var smsProvider providers.SMSProvider
	if cfg.SMS.BaseURL != "" && cfg.SMS.APIKey != "" {
		sender, err := notifications.NewSMSGatewaySender(&cfg.SMS)
		if err != nil {
			log.Printf("Warning: Failed to initialize SMS gateway: %v", err)
		} else {
			smsProvider = sender
			log.Println("SMS gateway initialized successfully")
		}
	} else {
		log.Println("SMS alerting disabled (gateway not configured)")
	}

	// Initialize services
	resolverService := services.NewBatchResolverService(batchAdapter, promptAdapter)
	historyService := services.NewCallHistoryService(
		callHistoryAdapter,
		eventBus,
		cfg.Aggregation.RecentCallLimit,
		cfg.Aggregation.ContextMaxChars,
	)
	generationService := services.NewPromptGenerationService(
		promptAdapter,
		batchAdapter,
		promptProvider,
		historyService,
		searchRepo,
		eventBus,
	)
	ingestionService := services.NewIngestionService(batchAdapter, promptAdapter, generationService, eventBus)
	triageService := services.NewTriageService(resolverService, promptAdapter, historyService, voiceProvider)
	searchService := services.NewPatientSearchService(searchRepo, promptAdapter, resolverService)
	alertService := services.NewAlertService(smsProvider, cfg.SMS.AlertRecipient, sqlx.NewDb(pgClient.DB(), "postgres"))

	// Initialize handlers
	batchHandler := handlers.NewBatchHandler(batchAdapter, promptAdapter, resolverService, ingestionService, searchService)
	promptHandler := handlers.NewPromptHandler(generationService, alertService, cacheProvider)
	triageHandler := handlers.NewTriageHandler(triageService)
	callWebhookHandler := handlers.NewCallWebhookHandler(historyService)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	// Set up router
	router := routes.NewRouter(
		batchHandler,
		promptHandler,
		triageHandler,
		callWebhookHandler,
		sseHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}

	// Close event bus
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}

	log.Println("Server stopped")
}
