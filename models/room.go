package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Participant roles. Exactly one owner exists per room, assigned at creation.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Room struct {
	ID           string        `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string        `gorm:"size:255;not null" json:"name"`
	Description  string        `gorm:"size:500" json:"description,omitempty"`
	IsPrivate    bool          `gorm:"not null;default:false" json:"is_private"`
	Password     string        `gorm:"-" json:"-"`
	PasswordHash string        `gorm:"size:255" json:"-"`
	Version      uint          `gorm:"not null;default:0" json:"-"`
	AISettings   AISettings    `gorm:"embedded;embeddedPrefix:ai_" json:"ai_settings"`
	Participants []Participant `gorm:"foreignKey:RoomID" json:"participants,omitempty"`
	InviteCodes  []InviteCode  `gorm:"foreignKey:RoomID" json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

type Participant struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	RoomID   string    `gorm:"type:uuid;not null;index:idx_room_participant,unique" json:"-"`
	UserID   string    `gorm:"size:255;not null;index:idx_room_participant,unique" json:"user_id"`
	Name     string    `gorm:"size:255" json:"name,omitempty"`
	Email    string    `gorm:"size:255" json:"email,omitempty"`
	Role     string    `gorm:"size:20;not null;default:'member'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// AISettings is the per-room assistant configuration. Disabled by default.
type AISettings struct {
	Enabled      bool    `json:"enabled"`
	AIType       string  `gorm:"size:50" json:"ai_type,omitempty"`
	SystemPrompt string  `gorm:"size:2000" json:"system_prompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

// BeforeCreate assigns a room ID when none is set
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave hashes the plaintext password before it reaches the database
func (r *Room) BeforeSave(tx *gorm.DB) error {
	if r.Password != "" {
		hashedPassword, err := HashPassword(r.Password)
		if err != nil {
			return err
		}
		r.PasswordHash = hashedPassword
		r.Password = ""
	}
	return nil
}

// HashPassword derives the stored room secret from a plaintext password
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ValidatePassword checks a plaintext password against the stored hash
func (r *Room) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(r.PasswordHash), []byte(password))
}

// FindParticipant returns the participant entry for userID, or nil
func (r *Room) FindParticipant(userID string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].UserID == userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// LiveInviteCode returns the matching, unexpired invite code, or nil
func (r *Room) LiveInviteCode(code string, now time.Time) *InviteCode {
	for i := range r.InviteCodes {
		if r.InviteCodes[i].Code == code && r.InviteCodes[i].ExpiresAt.After(now) {
			return &r.InviteCodes[i]
		}
	}
	return nil
}

// Sanitize strips the password hash before the room leaves the engine
func (r *Room) Sanitize() *Room {
	r.Password = ""
	r.PasswordHash = ""
	return r
}
