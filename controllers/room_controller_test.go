package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chatly/chat_management_backend/middleware"
	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/repository"
	"github.com/chatly/chat_management_backend/services"
	"github.com/chatly/chat_management_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type testEnv struct {
	router *gin.Engine
	rooms  *services.RoomService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rooms := services.NewRoomService(repository.NewMemoryRoomRepository(), nil)
	notifications := services.NewNotificationService(repository.NewMemoryNotificationRepository())
	ai := services.NewAIService(rooms, nil, "", "")

	roomController := NewRoomController(rooms, notifications)
	aiController := NewAIController(ai)
	notificationController := NewNotificationController(notifications)

	router := gin.New()
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(testSecret))
	{
		api.POST("/rooms", roomController.CreateRoom)
		api.GET("/rooms", roomController.GetRooms)
		api.GET("/rooms/:id", roomController.GetRoom)
		api.PUT("/rooms/:id", roomController.UpdateRoom)
		api.POST("/rooms/:id/participants", roomController.AddParticipant)
		api.DELETE("/rooms/:id/participants", roomController.RemoveParticipant)
		api.POST("/rooms/:id/invite-code", roomController.GenerateInviteCode)
		api.POST("/rooms/:id/join", roomController.JoinRoom)
		api.GET("/rooms/:id/ai-settings", roomController.GetAISettings)
		api.POST("/ai/generate", aiController.Generate)
		api.GET("/notifications", notificationController.GetNotifications)
	}

	return &testEnv{router: router, rooms: rooms}
}

func (e *testEnv) request(t *testing.T, method, path string, ident *models.Identity, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ident != nil {
		token, err := utils.GenerateToken(*ident, testSecret)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var (
	ownerIdent = models.Identity{UserID: "user-owner", Email: "owner@test.dev", DisplayName: "Owner"}
	guestIdent = models.Identity{UserID: "user-guest", Email: "guest@test.dev", DisplayName: "Guest"}
)

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodGet, "/api/rooms", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateRoomEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("created", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{"name": "General"})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "General", data["name"])
		assert.NotContains(t, data, "password_hash")
	})

	t.Run("missing name is a binding error", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{"description": "no name"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("private without password", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{"name": "Vault", "is_private": true})
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		errObj := body["error"].(map[string]interface{})
		assert.Equal(t, "VALIDATION_ERROR", errObj["code"])
	})
}

func TestRoomAccessStatusCodes(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{
		"name": "Vault", "is_private": true, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	t.Run("outsider lookup and missing room are identical", func(t *testing.T) {
		outsider := env.request(t, http.MethodGet, "/api/rooms/"+roomID, &guestIdent, nil)
		missing := env.request(t, http.MethodGet, "/api/rooms/no-such-room", &ownerIdent, nil)

		require.Equal(t, http.StatusNotFound, outsider.Code)
		require.Equal(t, http.StatusNotFound, missing.Code)
		assert.JSONEq(t, missing.Body.String(), outsider.Body.String())
	})

	t.Run("join without credential is 401", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/join", &guestIdent, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		errObj := decodeBody(t, w)["error"].(map[string]interface{})
		assert.Equal(t, "AUTHORIZATION_ERROR", errObj["code"])
	})

	t.Run("join with wrong password is 401", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/join", &guestIdent, gin.H{"password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("join with the right password", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/join", &guestIdent, gin.H{"password": "hunter2"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("repeat join is 409", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/join", &guestIdent, gin.H{"password": "hunter2"})
		require.Equal(t, http.StatusConflict, w.Code)

		errObj := decodeBody(t, w)["error"].(map[string]interface{})
		assert.Equal(t, "CONFLICT_ERROR", errObj["code"])
	})

	t.Run("removing the owner is 403", func(t *testing.T) {
		w := env.request(t, http.MethodDelete, "/api/rooms/"+roomID+"/participants", &ownerIdent, gin.H{
			"user_id": ownerIdent.UserID,
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("join of a missing room is 404", func(t *testing.T) {
		w := env.request(t, http.MethodPost, "/api/rooms/no-such-room/join", &guestIdent, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInviteCodeEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{
		"name": "Vault", "is_private": true, "password": "hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/invite-code", &ownerIdent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	issue := decodeBody(t, w)["data"].(map[string]interface{})
	code := issue["invite_code"].(string)
	require.NotEmpty(t, code)

	w = env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/join", &guestIdent, gin.H{"invite_code": code})
	assert.Equal(t, http.StatusOK, w.Code)

	// Outsiders cannot mint codes.
	w = env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/invite-code", &models.Identity{UserID: "user-x"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddParticipantCreatesNotification(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/rooms", &ownerIdent, gin.H{"name": "General"})
	require.Equal(t, http.StatusCreated, w.Code)
	roomID := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodPost, "/api/rooms/"+roomID+"/participants", &ownerIdent, gin.H{
		"user_id": guestIdent.UserID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.request(t, http.MethodGet, "/api/notifications", &guestIdent, nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	notification := data[0].(map[string]interface{})
	assert.Equal(t, models.NotificationTypeInvite, notification["type"])
	assert.Equal(t, roomID, notification["room_id"])
}

func TestAIGenerateUnavailable(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/ai/generate", &ownerIdent, gin.H{
		"room_id": "room-1", "message": "hello",
	})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
