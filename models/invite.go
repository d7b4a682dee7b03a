package models

import (
	"time"
)

// InviteCode is a time-limited bearer credential scoped to one room.
// Codes stay valid until their own expiry; they are not consumed on use.
type InviteCode struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	RoomID    string    `gorm:"type:uuid;not null;index" json:"-"`
	Code      string    `gorm:"size:32;not null;index" json:"code"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedBy string    `gorm:"size:255" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
