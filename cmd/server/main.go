// Server runs the tracking API: event ingestion, metric summaries, and
// insight generation. Set DATABASE_URL and JWT_PUBLIC_KEY; OPENAI_API_KEY,
// KAFKA_BROKERS, and OTLP_ENDPOINT enable the optional integrations.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webpulse/backend/internal/config"
	"webpulse/backend/internal/db"
	eventrepo "webpulse/backend/internal/event/repository"
	eventservice "webpulse/backend/internal/event/service"
	insightrepo "webpulse/backend/internal/insight/repository"
	insightservice "webpulse/backend/internal/insight/service"
	"webpulse/backend/internal/llm"
	metricrepo "webpulse/backend/internal/metric/repository"
	metricservice "webpulse/backend/internal/metric/service"
	"webpulse/backend/internal/security"
	"webpulse/backend/internal/server"
	"webpulse/backend/internal/telemetry"
	telemetryotel "webpulse/backend/internal/telemetry/otel"
	"webpulse/backend/internal/telemetry/producer"
	userrepo "webpulse/backend/internal/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTPublicKey == "" {
		log.Fatal("JWT_PUBLIC_KEY is required")
	}

	pubKey, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	tokens := security.NewTokenVerifier(pubKey, cfg.JWTIssuer, cfg.JWTAudience)

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, "webpulse-api", false)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()

	users := userrepo.NewPostgresRepository(sqlDB)
	events := eventrepo.NewPostgresRepository(sqlDB)
	metrics := metricrepo.NewPostgresRepository(sqlDB)
	insights := insightrepo.NewPostgresRepository(sqlDB)

	aggregator := metricservice.NewAggregator(events, metrics)

	kafkaProducer, err := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if err != nil {
		log.Fatalf("kafka: %v", err)
	}
	var sinks []telemetry.EventEmitter
	if kafkaProducer != nil {
		log.Printf("telemetry: emitting activity events to %s", cfg.TelemetryKafkaTopic)
		sinks = append(sinks, kafkaProducer)
	}
	if cfg.OTLPEndpoint != "" {
		sinks = append(sinks, telemetryotel.NewEventEmitter(providers.LoggerProvider))
	}
	var emitter eventservice.ActivityEmitter
	if len(sinks) > 0 {
		emitter = telemetry.NewRecorder(sinks...)
	}

	ingestion := eventservice.NewService(events, users, aggregator, emitter)

	var generator insightservice.Generator
	if cfg.OpenAIAPIKey != "" {
		generator = llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		log.Println("insight: OPENAI_API_KEY not set, using local fallback only")
	}
	engine := insightservice.NewEngine(metrics, insights, generator)
	engine.SetRetention(cfg.InsightRetention)

	router := server.NewRouter(server.Deps{
		Tokens:       tokens,
		Events:       ingestion,
		Metrics:      aggregator,
		Insights:     engine,
		HealthPinger: sqlDB,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	// Let in-flight async telemetry emits finish before tearing providers down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("kafka close: %v", err)
		}
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}
