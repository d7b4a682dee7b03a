package controllers

import (
	"net/http"
	"strconv"

	"github.com/chatly/chat_management_backend/middleware"
	"github.com/chatly/chat_management_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type NotificationController struct {
	notifications *services.NotificationService
	log           *logrus.Entry
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{
		notifications: notifications,
		log:           logrus.WithField("component", "NotificationController"),
	}
}

// GetNotifications godoc
// @Summary List notifications for the authenticated user
// @Description Returns the user's notifications, newest first
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum notifications to return (1-100)"
// @Success 200 {object} map[string]interface{} "List of notifications"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/notifications [get]
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := nc.notifications.List(c.Request.Context(), ident.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notifications})
}

// MarkAsRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{} "Updated notification"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Notification not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/notifications/{id}/read [put]
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	notification, err := nc.notifications.MarkAsRead(c.Request.Context(), c.Param("id"), ident.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": notification})
}

// MarkAllAsRead godoc
// @Summary Mark all notifications as read
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "All notifications marked read"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/notifications/read-all [put]
func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	if err := nc.notifications.MarkAllAsRead(c.Request.Context(), ident.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all notifications marked as read"})
}

// DeleteNotification godoc
// @Summary Delete a notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{} "Notification deleted"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Notification not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/notifications/{id} [delete]
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	if err := nc.notifications.Delete(c.Request.Context(), c.Param("id"), ident.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification deleted"})
}
