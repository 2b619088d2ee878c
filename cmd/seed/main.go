// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user already exists.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"webpulse/backend/internal/config"
	"webpulse/backend/internal/db"
	eventdomain "webpulse/backend/internal/event/domain"
	eventrepo "webpulse/backend/internal/event/repository"
	metricrepo "webpulse/backend/internal/metric/repository"
	metricservice "webpulse/backend/internal/metric/service"
)

const (
	devUserID       = "dev-user-001"
	pausedDevUserID = "dev-user-002"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; put it in .env or export it")
		os.Exit(1)
	}
	if cfg.Env == "production" {
		fmt.Fprintln(os.Stderr, "seed: refusing to run with APP_ENV=production")
		os.Exit(1)
	}

	sqlDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("seed: db: %v", err)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var exists bool
	if err := sqlDB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, devUserID).Scan(&exists); err != nil {
		log.Fatalf("seed: check dev user: %v", err)
	}
	if exists {
		log.Printf("seed: dev user %s already present, nothing to do", devUserID)
		return
	}

	if err := seedUsers(ctx, sqlDB); err != nil {
		log.Fatalf("seed: users: %v", err)
	}
	if err := seedEvents(ctx, sqlDB); err != nil {
		log.Fatalf("seed: events: %v", err)
	}

	log.Printf("seed: done (users %s, %s)", devUserID, pausedDevUserID)
}

func seedUsers(ctx context.Context, sqlDB *sql.DB) error {
	_, err := sqlDB.ExecContext(ctx, `
		INSERT INTO users (id, tracking_paused, account_status)
		VALUES ($1, FALSE, 'active'), ($2, TRUE, 'active')`,
		devUserID, pausedDevUserID)
	return err
}

// seedEvents inserts a realistic sample day for the dev user and computes its
// rollup, so summaries and insight generation work immediately.
func seedEvents(ctx context.Context, sqlDB *sql.DB) error {
	events := eventrepo.NewPostgresRepository(sqlDB)
	metrics := metricrepo.NewPostgresRepository(sqlDB)

	now := time.Now().UTC()
	day := now.Format("2006-01-02")
	morning := now.Truncate(24 * time.Hour).Add(9 * time.Hour)

	sample := []*eventdomain.TrackingEvent{
		event(morning, eventdomain.EventTypeScroll, 0, 12000, "docs.example.com", "https://docs.example.com/guide"),
		event(morning.Add(5*time.Minute), eventdomain.EventTypeFocus, 1_500_000, 0, "docs.example.com", "https://docs.example.com/guide"),
		event(morning.Add(40*time.Minute), eventdomain.EventTypeClick, 200, 0, "docs.example.com", "https://docs.example.com/guide"),
		event(morning.Add(time.Hour), eventdomain.EventTypeIdle, 300_000, 0, "docs.example.com", "https://docs.example.com/guide"),
		event(morning.Add(2*time.Hour), eventdomain.EventTypeScroll, 0, 8000, "news.example.org", "https://news.example.org/"),
		event(morning.Add(2*time.Hour+10*time.Minute), eventdomain.EventTypeFocus, 900_000, 0, "news.example.org", "https://news.example.org/"),
		event(morning.Add(5*time.Hour), eventdomain.EventTypeClick, 150, 0, "mail.example.com", "https://mail.example.com/inbox"),
		event(morning.Add(5*time.Hour+2*time.Minute), eventdomain.EventTypeBlur, 0, 0, "mail.example.com", "https://mail.example.com/inbox"),
	}

	stored, err := events.InsertBatch(ctx, sample)
	if err != nil {
		return err
	}
	log.Printf("seed: stored %d tracking events for %s", stored, day)

	aggregator := metricservice.NewAggregator(events, metrics)
	if _, err := aggregator.Aggregate(ctx, devUserID, day); err != nil {
		return err
	}
	log.Printf("seed: computed daily metric for %s", day)
	return nil
}

func event(at time.Time, typ eventdomain.EventType, durationMs, scroll int64, domainName, url string) *eventdomain.TrackingEvent {
	started := at
	return &eventdomain.TrackingEvent{
		ID:             uuid.NewString(),
		UserID:         devUserID,
		Type:           typ,
		DurationMs:     durationMs,
		ScrollDistance: scroll,
		URL:            url,
		Domain:         domainName,
		StartedAt:      &started,
		CreatedAt:      at,
	}
}
