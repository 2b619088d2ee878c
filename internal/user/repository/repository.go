package repository

import (
	"context"

	"webpulse/backend/internal/user/domain"
)

// Repository defines the slice of user persistence this service needs: the
// tracking pause gate on the read side and the presence snapshot on the write
// side. The rest of the user record belongs to the profile subsystem.
type Repository interface {
	// GetByID returns the user for id, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// UpdatePresence overwrites the user's presence snapshot and account
	// status.
	UpdatePresence(ctx context.Context, userID string, p domain.Presence, status domain.AccountStatus) error
}
