package utils

import (
	"errors"
	"time"

	"github.com/chatly/chat_management_backend/models"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateToken creates a signed JWT carrying the caller identity claims
func GenerateToken(ident models.Identity, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": ident.UserID,
		"email":   ident.Email,
		"name":    ident.DisplayName,
		"role":    ident.Role,
		"exp":     time.Now().Add(time.Hour * 24 * 7).Unix(), // Token expires in 7 days
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a token and reconstructs the caller identity from its
// claims. Tokens are issued by the external identity provider with the same
// shared secret.
func ParseToken(tokenString, secret string) (*models.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, errors.New("token is missing user_id")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	role, _ := claims["role"].(string)

	return &models.Identity{
		UserID:      userID,
		Email:       email,
		DisplayName: name,
		Role:        role,
	}, nil
}
