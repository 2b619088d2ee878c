package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"webpulse/backend/internal/insight/domain"
	"webpulse/backend/internal/insight/repository"
	"webpulse/backend/internal/insight/signature"
	"webpulse/backend/internal/llm"
	metricdomain "webpulse/backend/internal/metric/domain"
)

// ErrMetricsNotReady is returned when no daily metric exists for the
// requested date; there is nothing to generate from.
var ErrMetricsNotReady = errors.New("metrics not available yet for this date")

// dateFormat is the UTC calendar day form shared with the aggregator.
const dateFormat = "2006-01-02"

// generateAttempts bounds the generate-and-sanitize loop. Distinct from the
// transport-level retries inside the llm client.
const generateAttempts = 3

// MetricStore is the slice of the metric store the engine reads.
type MetricStore interface {
	Get(ctx context.Context, userID, date string) (*metricdomain.DailyMetric, error)
}

// Generator produces completion text from a chat prompt. May be nil on the
// engine; then every insight comes from the local fallback template.
type Generator interface {
	GenerateCompletion(ctx context.Context, messages []llm.Message) (string, error)
}

// Engine generates, caches, and trims insight records. Generation is
// signature-cached: when the metric content is unchanged the stored row is
// refreshed in place instead of calling the external model again.
type Engine struct {
	metrics   MetricStore
	insights  repository.Repository
	generator Generator
	retention int
	now       func() time.Time
}

// NewEngine returns an insight engine with the default retention.
func NewEngine(metrics MetricStore, insights repository.Repository, generator Generator) *Engine {
	return &Engine{
		metrics:   metrics,
		insights:  insights,
		generator: generator,
		retention: domain.DefaultRetention,
		now:       time.Now,
	}
}

// SetRetention overrides how many insight rows are kept per (user, day).
// Values below one are ignored.
func (e *Engine) SetRetention(n int) {
	if n >= 1 {
		e.retention = n
	}
}

// Generate produces (or refreshes) the insight for (userID, date). date ""
// means today. When regenerate is false and the stored insight already
// carries the current metric signature, the external model is not called:
// the existing row is returned with a refreshed updated-timestamp.
//
// External generation failures never surface to the caller; the local
// template takes over instead.
func (e *Engine) Generate(ctx context.Context, userID, date string, regenerate bool) (*domain.Insight, error) {
	if date == "" {
		date = e.now().UTC().Format(dateFormat)
	}

	metric, err := e.metrics.Get(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		return nil, ErrMetricsNotReady
	}

	ictx := BuildContext(metric)
	sig, err := signature.Hash(signaturePayload{
		Date:       ictx.Date,
		Totals:     ictx.Totals,
		TopDomains: ictx.TopDomains,
		PeakHours:  ictx.PeakHours,
		Derived:    ictx.Derived,
	})
	if err != nil {
		return nil, err
	}

	latest, err := e.insights.LatestForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	if !regenerate && latest != nil && latest.MetricSignature == sig {
		// Cache hit: same content, no external call. Touch the row so trim
		// ordering reflects the access.
		latest.UpdatedAt = now
		if err := e.insights.Update(ctx, latest); err != nil {
			return nil, err
		}
		return latest, nil
	}

	body := e.generateBody(ctx, ictx)
	title := makeTitle(body)
	tags := deriveTags(metric.Totals)

	var result *domain.Insight
	if latest != nil && latest.MetricSignature == sig {
		// Same underlying data: rewrite the row in place, no new row.
		latest.Title = title
		latest.Body = body
		latest.Tags = tags
		latest.UpdatedAt = now
		if err := e.insights.Update(ctx, latest); err != nil {
			return nil, err
		}
		result = latest
	} else {
		result = &domain.Insight{
			ID:              uuid.NewString(),
			UserID:          userID,
			Title:           title,
			Body:            body,
			MetricDate:      date,
			Tags:            tags,
			MetricSignature: sig,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := e.insights.Insert(ctx, result); err != nil {
			return nil, err
		}
	}

	if deleted, err := e.insights.TrimForDate(ctx, userID, date, e.retention); err != nil {
		// Trim failure only delays cleanup; the insight itself is stored.
		log.Printf("insight: trim for %s/%s failed: %v", userID, date, err)
	} else if deleted > 0 {
		log.Printf("insight: trimmed %d rows for %s/%s", deleted, userID, date)
	}

	return result, nil
}

// generateBody asks the external model up to generateAttempts times and
// sanitizes each response; if nothing usable comes back it falls back to the
// local template. The returned body is never empty.
func (e *Engine) generateBody(ctx context.Context, ictx *InsightContext) string {
	if e.generator != nil {
		prompt := buildPrompt(ictx)
		for attempt := 1; attempt <= generateAttempts; attempt++ {
			raw, err := e.generator.GenerateCompletion(ctx, prompt)
			if err != nil {
				log.Printf("insight: generation attempt %d failed: %v", attempt, err)
				continue
			}
			if body := sanitize(raw); body != "" {
				return body
			}
		}
	}
	return fallbackBody(ictx)
}

// GetLatest returns up to limit recent insights for the user, deduplicated
// by (metric date, signature-or-title). The store is over-fetched threefold
// so a transient burst of duplicates (possible before trim runs) does not
// shrink the page.
func (e *Engine) GetLatest(ctx context.Context, userID string, limit int) ([]*domain.Insight, error) {
	if limit <= 0 {
		limit = domain.DefaultRetention
	}
	rows, err := e.insights.ListRecent(ctx, userID, limit*3)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	out := make([]*domain.Insight, 0, limit)
	for _, in := range rows {
		key := in.MetricDate + "|" + in.MetricSignature
		if in.MetricSignature == "" {
			key = in.MetricDate + "|" + in.Title
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, in)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
