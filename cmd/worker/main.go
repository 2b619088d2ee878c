// Worker consumes activity events from Kafka, pushes them to Loki, and keeps a
// durable copy in Postgres. Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC,
// KAFKA_GROUP_ID, and LOKI_URL; DATABASE_URL is optional (no DB copy without it).
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"webpulse/backend/internal/config"
	"webpulse/backend/internal/db"
	"webpulse/backend/internal/telemetry/domain"
	"webpulse/backend/internal/telemetry/loki"
	telemetryrepo "webpulse/backend/internal/telemetry/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		log.Fatal("worker: LOKI_URL is required")
	}

	topic := cfg.TelemetryKafkaTopic
	if topic == "" {
		topic = "webpulse-activity"
	}
	groupID := cfg.KafkaGroupID
	if groupID == "" {
		groupID = "webpulse-activity-worker"
	}

	var activityRepo telemetryrepo.Repository
	if cfg.DatabaseURL != "" {
		sqlDB, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("worker: db: %v", err)
		}
		defer sqlDB.Close()
		activityRepo = telemetryrepo.NewPostgresRepository(sqlDB)
	} else {
		log.Println("worker: DATABASE_URL not set, skipping the Postgres copy")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s), pushing to %s", topic, groupID, cfg.LokiURL)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := loki.PushEventJSON(pushCtx, cfg.LokiURL, msg.Value); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
		if activityRepo != nil {
			saveActivity(pushCtx, activityRepo, msg.Value)
		}
		pushCancel()
	}
}

// saveActivity persists one Kafka message to the activity log. Best-effort:
// malformed or unsaveable messages are logged and skipped.
func saveActivity(ctx context.Context, repo telemetryrepo.Repository, raw []byte) {
	var a domain.Activity
	if err := json.Unmarshal(raw, &a); err != nil {
		log.Printf("worker: skipping malformed activity event: %v", err)
		return
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if err := repo.Save(ctx, &a); err != nil {
		log.Printf("worker: activity save failed: %v", err)
	}
}
