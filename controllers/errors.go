package controllers

import (
	"net/http"

	"github.com/chatly/chat_management_backend/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps service error kinds to transport status codes.
// Authorization failures are permission problems (403) everywhere except the
// join credential gate, which uses respondCredentialError.
func respondError(c *gin.Context, err error) {
	respond(c, err, http.StatusForbidden)
}

// respondCredentialError is respondError with authorization failures treated
// as missing/invalid credentials (401).
func respondCredentialError(c *gin.Context, err error) {
	respond(c, err, http.StatusUnauthorized)
}

func respond(c *gin.Context, err error, authorizationStatus int) {
	status := http.StatusInternalServerError
	kind := services.KindOf(err)

	switch kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	case services.KindAuthorization:
		status = authorizationStatus
	case services.KindPersistence:
		logrus.WithError(err).Error("unhandled internal error")
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    string(kind),
			"message": services.MessageOf(err),
		},
	})
}
