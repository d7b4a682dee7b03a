package repository

import (
	"context"

	"github.com/chatly/chat_management_backend/models"
)

// NotificationRepository is the store contract for user notifications.
// Per-user operations scope every predicate by userID so one user can never
// read or mutate another user's notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)

	// MarkAsRead flips is_read in a single conditional update-and-fetch
	// matching {id AND userID}; ErrNotFound covers both a missing
	// notification and a foreign owner.
	MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error)

	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
}
