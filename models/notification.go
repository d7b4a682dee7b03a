package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	NotificationTypeMention = "mention"
	NotificationTypeInvite  = "invite"
	NotificationTypeSystem  = "system"
)

type Notification struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"size:255;not null;index:idx_notifications_user" json:"user_id"`
	Type      string         `gorm:"size:20;not null" json:"type"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	RoomID    string         `gorm:"type:uuid" json:"room_id,omitempty"`
	MessageID string         `gorm:"size:255" json:"message_id,omitempty"`
	IsRead    bool           `gorm:"not null;default:false;index:idx_notifications_user" json:"is_read"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
