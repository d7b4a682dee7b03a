package controllers

import (
	"net/http"
	"strconv"

	"github.com/chatly/chat_management_backend/middleware"
	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RoomController struct {
	rooms         *services.RoomService
	notifications *services.NotificationService
	log           *logrus.Entry
}

func NewRoomController(rooms *services.RoomService, notifications *services.NotificationService) *RoomController {
	return &RoomController{
		rooms:         rooms,
		notifications: notifications,
		log:           logrus.WithField("component", "RoomController"),
	}
}

type CreateRoomInput struct {
	Name        string `json:"name" binding:"required" example:"General Chat"`
	Description string `json:"description" example:"Team-wide discussion"`
	IsPrivate   bool   `json:"is_private" example:"false"`
	Password    string `json:"password"`
}

type UpdateRoomInput struct {
	Name        *string `json:"name" example:"Updated Chat Room"`
	Description *string `json:"description"`
	IsPrivate   *bool   `json:"is_private"`
	Password    *string `json:"password"`
}

type ParticipantInput struct {
	UserID string `json:"user_id" binding:"required" example:"user-42"`
}

type JoinRoomInput struct {
	Password   string `json:"password"`
	InviteCode string `json:"invite_code"`
}

// CreateRoom godoc
// @Summary Create a new chat room
// @Description Creates a chat room with the authenticated caller as its owner
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput true "Room Creation"
// @Success 201 {object} map[string]interface{} "Room created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms [post]
func (rc *RoomController) CreateRoom(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	room, err := rc.rooms.CreateRoom(c.Request.Context(), ident, services.CreateRoomInput{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		Password:    input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": room})
}

// GetRooms godoc
// @Summary List chat rooms
// @Description Returns a page of chat rooms with optional name search
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (0-based)"
// @Param pageSize query int false "Page size (1-100)"
// @Param sortField query string false "Sort field (name, createdAt, updatedAt)"
// @Param sortOrder query string false "Sort order (asc, desc)"
// @Param search query string false "Case-insensitive name search"
// @Success 200 {object} map[string]interface{} "List of rooms"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms [get]
func (rc *RoomController) GetRooms(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	// Room lists change constantly; make sure clients never cache them.
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	rooms, metadata, err := rc.rooms.ListRooms(c.Request.Context(), ident.UserID, services.ListRoomsOptions{
		Page:      page,
		PageSize:  pageSize,
		SortField: c.DefaultQuery("sortField", "updatedAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
		Search:    c.Query("search"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rooms, "metadata": metadata})
}

// GetRoom godoc
// @Summary Get details of a specific room
// @Description Returns a room the caller participates in
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "Room details"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id} [get]
func (rc *RoomController) GetRoom(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	room, err := rc.rooms.GetRoom(c.Request.Context(), c.Param("id"), ident.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// UpdateRoom godoc
// @Summary Update a room's details
// @Description Updates name, description or privacy; caller must be owner or admin
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param room body UpdateRoomInput true "Room Update"
// @Success 200 {object} map[string]interface{} "Room updated successfully"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id} [put]
func (rc *RoomController) UpdateRoom(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	var input UpdateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	room, err := rc.rooms.UpdateRoom(c.Request.Context(), c.Param("id"), ident.UserID, services.UpdateRoomInput{
		Name:        input.Name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		Password:    input.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// AddParticipant godoc
// @Summary Add a participant to a room
// @Description Adds a user as a member; duplicates are rejected
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param participant body ParticipantInput true "Participant"
// @Success 200 {object} map[string]interface{} "Participant added"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 409 {object} map[string]interface{} "Already a participant"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id}/participants [post]
func (rc *RoomController) AddParticipant(c *gin.Context) {
	ident := middleware.CallerIdentity(c)
	roomID := c.Param("id")

	var input ParticipantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	if err := rc.rooms.AddParticipant(c.Request.Context(), roomID, input.UserID, ident.UserID); err != nil {
		respondError(c, err)
		return
	}

	// Best effort: tell the new participant they were added. Delivery
	// fan-out is owned by adjacent services.
	_, err := rc.notifications.Create(c.Request.Context(), services.CreateNotificationInput{
		UserID:  input.UserID,
		Type:    models.NotificationTypeInvite,
		Title:   "Added to a room",
		Content: "You have been added to a chat room.",
		RoomID:  roomID,
	})
	if err != nil {
		rc.log.WithError(err).WithField("roomId", roomID).Warn("participant notification failed")
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "participant added"})
}

// RemoveParticipant godoc
// @Summary Remove a participant from a room
// @Description Owner/admin may remove anyone but the owner; members may remove themselves
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param participant body ParticipantInput true "Participant"
// @Success 200 {object} map[string]interface{} "Participant removed"
// @Failure 400 {object} map[string]interface{} "Invalid input"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 403 {object} map[string]interface{} "Forbidden"
// @Failure 404 {object} map[string]interface{} "Room or participant not found"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id}/participants [delete]
func (rc *RoomController) RemoveParticipant(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	var input ParticipantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	if err := rc.rooms.RemoveParticipant(c.Request.Context(), c.Param("id"), input.UserID, ident.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "participant removed"})
}

// GenerateInviteCode godoc
// @Summary Issue an invite code for a room
// @Description Creates a bearer code valid for 24 hours; caller must be a participant
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "Invite code"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id}/invite-code [post]
func (rc *RoomController) GenerateInviteCode(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	issue, err := rc.rooms.GenerateInviteCode(c.Request.Context(), c.Param("id"), ident.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": issue})
}

// JoinRoom godoc
// @Summary Join a room
// @Description Joins the caller to the room; private rooms require a password or invite code
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Param credential body JoinRoomInput false "Join credential"
// @Success 200 {object} map[string]interface{} "Joined room"
// @Failure 401 {object} map[string]interface{} "Password or invite code rejected"
// @Failure 404 {object} map[string]interface{} "Room does not exist"
// @Failure 409 {object} map[string]interface{} "Already joined"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id}/join [post]
func (rc *RoomController) JoinRoom(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	var input JoinRoomInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
			return
		}
	}

	room, err := rc.rooms.JoinRoom(c.Request.Context(), c.Param("id"), ident, services.JoinCredential{
		Password:   input.Password,
		InviteCode: input.InviteCode,
	})
	if err != nil {
		respondCredentialError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": room})
}

// GetAISettings godoc
// @Summary Get a room's AI settings
// @Description Returns the room's assistant configuration; disabled by default
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Room ID"
// @Success 200 {object} map[string]interface{} "AI settings"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 500 {object} map[string]interface{} "Server error"
// @Router /api/rooms/{id}/ai-settings [get]
func (rc *RoomController) GetAISettings(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	settings, err := rc.rooms.GetAISettings(c.Request.Context(), c.Param("id"), ident.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": settings})
}
