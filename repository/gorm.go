package repository

import (
	"context"
	"errors"

	"github.com/chatly/chat_management_backend/models"
	"gorm.io/gorm"
)

// GormRoomRepository implements RoomRepository on a relational store.
type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", participantOrder).
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return room.Sanitize(), nil
}

func (r *GormRoomRepository) FindByIDWithSecret(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", participantOrder).
		Preload("InviteCodes").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return &room, nil
}

func (r *GormRoomRepository) FindForParticipant(ctx context.Context, id, userID string) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Participants", participantOrder).
		Where("id = ? AND id IN (SELECT room_id FROM participants WHERE room_id = ? AND user_id = ?)", id, id, userID).
		First(&room).Error
	if err != nil {
		return nil, translateGormError(err)
	}
	return room.Sanitize(), nil
}

func (r *GormRoomRepository) List(ctx context.Context, q ListRoomsQuery) ([]models.Room, error) {
	query := r.db.WithContext(ctx).Model(&models.Room{}).Preload("Participants", participantOrder)
	if q.Search != "" {
		query = query.Where("name ILIKE ?", "%"+q.Search+"%")
	}

	direction := "ASC"
	if q.SortDesc {
		direction = "DESC"
	}

	var rooms []models.Room
	err := query.Order(q.SortField + " " + direction).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	for i := range rooms {
		rooms[i].Sanitize()
	}
	return rooms, nil
}

func (r *GormRoomRepository) Count(ctx context.Context, search string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Room{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *GormRoomRepository) UpdateAuthorized(ctx context.Context, id, requesterID string, roles []string, fields map[string]interface{}) (*models.Room, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND id IN (SELECT room_id FROM participants WHERE room_id = ? AND user_id = ? AND role IN ?)",
			id, id, requesterID, roles).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.FindByID(ctx, id)
}

func (r *GormRoomRepository) InsertParticipant(ctx context.Context, roomID string, expectedVersion uint, p *models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, roomID, expectedVersion); err != nil {
			return err
		}

		p.RoomID = roomID
		if err := tx.Create(p).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateEntry
			}
			return err
		}
		return nil
	})
}

func (r *GormRoomRepository) DeleteParticipant(ctx context.Context, roomID string, expectedVersion uint, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, roomID, expectedVersion); err != nil {
			return err
		}

		result := tx.Where("room_id = ? AND user_id = ?", roomID, userID).
			Delete(&models.Participant{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormRoomRepository) AppendInviteCode(ctx context.Context, roomID string, code *models.InviteCode) error {
	code.RoomID = roomID
	return r.db.WithContext(ctx).Create(code).Error
}

// bumpVersion is the optimistic-concurrency gate: the version only advances
// when it still matches what the caller read, otherwise the whole sequence
// must be retried.
func bumpVersion(tx *gorm.DB, roomID string, expectedVersion uint) error {
	result := tx.Model(&models.Room{}).
		Where("id = ? AND version = ?", roomID, expectedVersion).
		Update("version", gorm.Expr("version + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func participantOrder(db *gorm.DB) *gorm.DB {
	return db.Order("participants.joined_at ASC")
}

func translateGormError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// GormNotificationRepository implements NotificationRepository.
type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *GormNotificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *GormNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	var n models.Notification
	if err := r.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &n, nil
}

func (r *GormNotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *GormNotificationRepository) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
