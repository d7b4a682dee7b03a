package controllers

import (
	"net/http"

	"github.com/chatly/chat_management_backend/middleware"
	"github.com/chatly/chat_management_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AIController struct {
	ai  *services.AIService
	log *logrus.Entry
}

func NewAIController(ai *services.AIService) *AIController {
	return &AIController{
		ai:  ai,
		log: logrus.WithField("component", "AIController"),
	}
}

type GenerateInput struct {
	RoomID  string `json:"room_id" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// Generate godoc
// @Summary Generate an AI response
// @Description Produces an assistant reply for a room the caller participates in
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GenerateInput true "Generation request"
// @Success 200 {object} map[string]interface{} "Generated response"
// @Failure 400 {object} map[string]interface{} "Invalid input or AI disabled"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Failure 503 {object} map[string]interface{} "AI provider not configured"
// @Router /api/ai/generate [post]
func (ac *AIController) Generate(c *gin.Context) {
	if !ac.ai.IsAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   gin.H{"message": "AI provider is not configured"},
		})
		return
	}

	ident := middleware.CallerIdentity(c)

	var input GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	result, err := ac.ai.GenerateResponse(c.Request.Context(), ident, services.GenerateInput{
		RoomID:  input.RoomID,
		Message: input.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// ResetContext godoc
// @Summary Reset the AI conversation context
// @Description Drops the caller's cached conversation history for a room
// @Tags ai
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path string true "Room ID"
// @Success 200 {object} map[string]interface{} "Context reset"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "Room not found or unauthorized"
// @Router /api/ai/context/{roomId} [delete]
func (ac *AIController) ResetContext(c *gin.Context) {
	ident := middleware.CallerIdentity(c)

	if err := ac.ai.ResetContext(c.Request.Context(), ident, c.Param("roomId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "context reset"})
}
