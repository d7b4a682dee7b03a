package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/repository"
	"github.com/sirupsen/logrus"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

var notificationTypes = map[string]bool{
	models.NotificationTypeMention: true,
	models.NotificationTypeInvite:  true,
	models.NotificationTypeSystem:  true,
}

// NotificationService is simple per-user notification CRUD. Delivery fan-out
// is handled by adjacent services.
type NotificationService struct {
	repo repository.NotificationRepository
	log  *logrus.Entry
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{
		repo: repo,
		log:  logrus.WithField("component", "NotificationService"),
	}
}

type CreateNotificationInput struct {
	UserID    string
	Type      string
	Title     string
	Content   string
	RoomID    string
	MessageID string
	Metadata  map[string]interface{}
}

func (s *NotificationService) Create(ctx context.Context, input CreateNotificationInput) (*models.Notification, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, newValidationError("userId is required")
	}
	if !notificationTypes[input.Type] {
		return nil, newValidationError("invalid notification type")
	}
	if input.Title == "" || input.Content == "" {
		return nil, newValidationError("title and content are required")
	}

	n := &models.Notification{
		UserID:    input.UserID,
		Type:      input.Type,
		Title:     input.Title,
		Content:   input.Content,
		RoomID:    input.RoomID,
		MessageID: input.MessageID,
	}
	if len(input.Metadata) > 0 {
		payload, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, newValidationError("metadata must be JSON-encodable")
		}
		n.Metadata = payload
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.log.WithError(err).Error("notification creation failed")
		return nil, newPersistenceError("failed to create notification", err)
	}
	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit < 1 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		s.log.WithError(err).Error("notification listing failed")
		return nil, newPersistenceError("failed to list notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	n, err := s.repo.MarkAsRead(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError("notification not found or unauthorized")
		}
		return nil, newPersistenceError("failed to mark notification as read", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return newPersistenceError("failed to mark notifications as read", err)
	}
	return nil
}

func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	err := s.repo.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return newNotFoundError("notification not found or unauthorized")
		}
		return newPersistenceError("failed to delete notification", err)
	}
	return nil
}
