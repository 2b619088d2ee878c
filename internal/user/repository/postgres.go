package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"webpulse/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tracking_paused, presence, account_status, created_at, updated_at
		FROM users WHERE id = $1`, id)

	var u domain.User
	var presence []byte
	var status string
	err := row.Scan(&u.ID, &u.TrackingPaused, &presence, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(presence) > 0 {
		if err := json.Unmarshal(presence, &u.Presence); err != nil {
			return nil, err
		}
	}
	u.AccountStatus = domain.AccountStatus(status)
	return &u, nil
}

// UpdatePresence overwrites the user's presence snapshot and account status.
// No-op (nil error) if the user row does not exist.
func (r *PostgresRepository) UpdatePresence(ctx context.Context, userID string, p domain.Presence, status domain.AccountStatus) error {
	presence, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE users SET presence = $2, account_status = $3, updated_at = $4
		WHERE id = $1`,
		userID, presence, string(status), time.Now().UTC())
	return err
}
