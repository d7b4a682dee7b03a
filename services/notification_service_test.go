package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotificationService() *NotificationService {
	return NewNotificationService(repository.NewMemoryNotificationRepository())
}

func TestCreateNotification(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	t.Run("valid input", func(t *testing.T) {
		n, err := svc.Create(ctx, CreateNotificationInput{
			UserID:  alice.UserID,
			Type:    models.NotificationTypeMention,
			Title:   "You were mentioned",
			Content: "Bob mentioned you in General",
			RoomID:  "room-1",
			Metadata: map[string]interface{}{
				"sender": bob.UserID,
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.IsRead)
		assert.JSONEq(t, `{"sender":"user-bob"}`, string(n.Metadata))
	})

	t.Run("rejected input", func(t *testing.T) {
		cases := []CreateNotificationInput{
			{Type: models.NotificationTypeSystem, Title: "t", Content: "c"},     // no user
			{UserID: alice.UserID, Type: "shout", Title: "t", Content: "c"},     // bad type
			{UserID: alice.UserID, Type: models.NotificationTypeSystem},         // no body
		}
		for _, input := range cases {
			_, err := svc.Create(ctx, input)
			assert.Equal(t, KindValidation, KindOf(err))
		}
	})
}

func TestListNotifications(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, CreateNotificationInput{
			UserID:  alice.UserID,
			Type:    models.NotificationTypeSystem,
			Title:   fmt.Sprintf("update %d", i),
			Content: "something happened",
		})
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  bob.UserID,
		Type:    models.NotificationTypeSystem,
		Title:   "not for alice",
		Content: "something else",
	})
	require.NoError(t, err)

	t.Run("newest first, caller scoped", func(t *testing.T) {
		list, err := svc.List(ctx, alice.UserID, 0)
		require.NoError(t, err)
		require.Len(t, list, 5)
		assert.Equal(t, "update 4", list[0].Title)
		assert.Equal(t, "update 0", list[4].Title)
	})

	t.Run("limit is honored and clamped", func(t *testing.T) {
		list, err := svc.List(ctx, alice.UserID, 2)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		list, err = svc.List(ctx, alice.UserID, 9999)
		require.NoError(t, err)
		assert.Len(t, list, 5)
	})
}

func TestMarkNotificationsRead(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  alice.UserID,
		Type:    models.NotificationTypeInvite,
		Title:   "Added to a room",
		Content: "You have been added to General",
	})
	require.NoError(t, err)

	t.Run("owner can mark read", func(t *testing.T) {
		n, err := svc.MarkAsRead(ctx, created.ID, alice.UserID)
		require.NoError(t, err)
		assert.True(t, n.IsRead)
	})

	t.Run("other users cannot see it", func(t *testing.T) {
		_, err := svc.MarkAsRead(ctx, created.ID, bob.UserID)
		require.Equal(t, KindNotFound, KindOf(err))
		assert.Equal(t, "notification not found or unauthorized", MessageOf(err))
	})

	t.Run("mark all read", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			_, err := svc.Create(ctx, CreateNotificationInput{
				UserID:  alice.UserID,
				Type:    models.NotificationTypeSystem,
				Title:   "unread",
				Content: "pending",
			})
			require.NoError(t, err)
		}
		require.NoError(t, svc.MarkAllAsRead(ctx, alice.UserID))

		list, err := svc.List(ctx, alice.UserID, 0)
		require.NoError(t, err)
		for _, n := range list {
			assert.True(t, n.IsRead)
		}
	})
}

func TestDeleteNotification(t *testing.T) {
	svc := newNotificationService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateNotificationInput{
		UserID:  alice.UserID,
		Type:    models.NotificationTypeSystem,
		Title:   "old",
		Content: "stale",
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, created.ID, bob.UserID)
	assert.Equal(t, KindNotFound, KindOf(err))

	require.NoError(t, svc.Delete(ctx, created.ID, alice.UserID))

	list, err := svc.List(ctx, alice.UserID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
