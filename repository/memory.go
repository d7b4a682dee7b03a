package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chatly/chat_management_backend/models"
	"github.com/google/uuid"
)

// MemoryRoomRepository is a process-local RoomRepository honoring the same
// conditional-write contracts as the relational implementation. It backs the
// service and controller tests.
type MemoryRoomRepository struct {
	mu    sync.Mutex
	rooms map[string]*models.Room
}

func NewMemoryRoomRepository() *MemoryRoomRepository {
	return &MemoryRoomRepository{rooms: make(map[string]*models.Room)}
}

func (r *MemoryRoomRepository) Create(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Mirror the gorm hooks: assign the ID and hash the password.
	if err := room.BeforeCreate(nil); err != nil {
		return err
	}
	if err := room.BeforeSave(nil); err != nil {
		return err
	}
	if _, ok := r.rooms[room.ID]; ok {
		return ErrDuplicateEntry
	}

	now := time.Now()
	room.CreatedAt = now
	room.UpdatedAt = now
	r.rooms[room.ID] = cloneRoom(room)
	return nil
}

func (r *MemoryRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRoom(room).Sanitize(), nil
}

func (r *MemoryRoomRepository) FindByIDWithSecret(ctx context.Context, id string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRoom(room), nil
}

func (r *MemoryRoomRepository) FindForParticipant(ctx context.Context, id, userID string) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok || room.FindParticipant(userID) == nil {
		return nil, ErrNotFound
	}
	return cloneRoom(room).Sanitize(), nil
}

func (r *MemoryRoomRepository) List(ctx context.Context, q ListRoomsQuery) ([]models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := r.matching(q.Search)
	sort.SliceStable(matched, func(i, j int) bool {
		less := roomLess(matched[i], matched[j], q.SortField)
		if q.SortDesc {
			return !less
		}
		return less
	})

	if q.Offset >= len(matched) {
		return []models.Room{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	rooms := make([]models.Room, 0, len(matched))
	for _, room := range matched {
		rooms = append(rooms, *cloneRoom(room).Sanitize())
	}
	return rooms, nil
}

func (r *MemoryRoomRepository) Count(ctx context.Context, search string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(search))), nil
}

func (r *MemoryRoomRepository) UpdateAuthorized(ctx context.Context, id, requesterID string, roles []string, fields map[string]interface{}) (*models.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := room.FindParticipant(requesterID)
	if p == nil || !containsRole(roles, p.Role) {
		return nil, ErrNotFound
	}

	for field, value := range fields {
		switch field {
		case "name":
			room.Name = value.(string)
		case "description":
			room.Description = value.(string)
		case "is_private":
			room.IsPrivate = value.(bool)
		case "password_hash":
			room.PasswordHash = value.(string)
		}
	}
	room.Version++
	room.UpdatedAt = time.Now()

	return cloneRoom(room).Sanitize(), nil
}

func (r *MemoryRoomRepository) InsertParticipant(ctx context.Context, roomID string, expectedVersion uint, p *models.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if room.Version != expectedVersion {
		return ErrVersionConflict
	}
	if room.FindParticipant(p.UserID) != nil {
		return ErrDuplicateEntry
	}

	p.RoomID = roomID
	room.Participants = append(room.Participants, *p)
	room.Version++
	room.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRoomRepository) DeleteParticipant(ctx context.Context, roomID string, expectedVersion uint, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	if room.Version != expectedVersion {
		return ErrVersionConflict
	}

	for i := range room.Participants {
		if room.Participants[i].UserID == userID {
			room.Participants = append(room.Participants[:i], room.Participants[i+1:]...)
			room.Version++
			room.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRoomRepository) AppendInviteCode(ctx context.Context, roomID string, code *models.InviteCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return ErrNotFound
	}
	code.RoomID = roomID
	code.CreatedAt = time.Now()
	room.InviteCodes = append(room.InviteCodes, *code)
	return nil
}

// SeedInviteCode installs an invite code directly, bypassing issuance. Test
// fixtures use it to plant already-expired codes.
func (r *MemoryRoomRepository) SeedInviteCode(roomID string, code models.InviteCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, ok := r.rooms[roomID]; ok {
		code.RoomID = roomID
		room.InviteCodes = append(room.InviteCodes, code)
	}
}

func (r *MemoryRoomRepository) matching(search string) []*models.Room {
	matched := make([]*models.Room, 0, len(r.rooms))
	needle := strings.ToLower(search)
	for _, room := range r.rooms {
		if needle == "" || strings.Contains(strings.ToLower(room.Name), needle) {
			matched = append(matched, room)
		}
	}
	return matched
}

func roomLess(a, b *models.Room, field string) bool {
	switch field {
	case "name":
		return a.Name < b.Name
	case "created_at":
		return a.CreatedAt.Before(b.CreatedAt)
	default:
		return a.UpdatedAt.Before(b.UpdatedAt)
	}
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func cloneRoom(room *models.Room) *models.Room {
	clone := *room
	clone.Participants = append([]models.Participant(nil), room.Participants...)
	clone.InviteCodes = append([]models.InviteCode(nil), room.InviteCodes...)
	return &clone
}

// MemoryNotificationRepository is the in-memory NotificationRepository used
// by tests.
type MemoryNotificationRepository struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now

	clone := *n
	r.notifications = append(r.notifications, &clone)
	return nil
}

func (r *MemoryNotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]models.Notification, 0, limit)
	// Newest first, matching the relational ordering.
	for i := len(r.notifications) - 1; i >= 0 && len(result) < limit; i-- {
		if r.notifications[i].UserID == userID {
			result = append(result, *r.notifications[i])
		}
	}
	return result, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			clone := *n
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *MemoryNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
