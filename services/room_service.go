package services

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/chatly/chat_management_backend/cache"
	"github.com/chatly/chat_management_backend/models"
	"github.com/chatly/chat_management_backend/repository"
	"github.com/sirupsen/logrus"
)

const (
	inviteCodeTTL    = 24 * time.Hour
	inviteCodeLength = 12

	// Bound on whole-sequence retries after an optimistic-concurrency
	// conflict on a room document.
	maxWriteAttempts = 3

	defaultPageSize = 20
	maxPageSize     = 100
)

// Uniform failure for lookup-style operations: a missing room and a
// non-participant caller must stay indistinguishable.
const msgRoomNotFoundOrUnauthorized = "room not found or unauthorized"

// Whitelist of caller-facing sort fields to their store columns.
var sortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// RoomService owns room lifecycle, the participant roster, privacy
// enforcement, invite-code issuance/redemption and role-based authorization.
type RoomService struct {
	repo  repository.RoomRepository
	cache *cache.Client
	log   *logrus.Entry
}

// NewRoomService builds the engine. cacheClient may be nil; settings
// write-through and invalidation are then skipped.
func NewRoomService(repo repository.RoomRepository, cacheClient *cache.Client) *RoomService {
	return &RoomService{
		repo:  repo,
		cache: cacheClient,
		log:   logrus.WithField("component", "RoomService"),
	}
}

type CreateRoomInput struct {
	Name        string
	Description string
	IsPrivate   bool
	Password    string
}

type UpdateRoomInput struct {
	Name        *string
	Description *string
	IsPrivate   *bool
	Password    *string
}

type ListRoomsOptions struct {
	Page      int
	PageSize  int
	SortField string
	SortOrder string
	Search    string
}

type ListMetadata struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	HasMore  bool  `json:"has_more"`
}

// JoinCredential carries whichever credential the caller presented. When both
// are set the invite code is verified and the password is ignored.
type JoinCredential struct {
	Password   string
	InviteCode string
}

type InviteCodeIssue struct {
	Code      string    `json:"invite_code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateRoom persists a new room with the creator as its owner. The returned
// room never exposes the password hash.
func (s *RoomService) CreateRoom(ctx context.Context, ident models.Identity, input CreateRoomInput) (*models.Room, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newValidationError("room name is required")
	}
	if input.IsPrivate && input.Password == "" {
		return nil, newValidationError("password is required for private rooms")
	}

	room := &models.Room{
		Name:        name,
		Description: input.Description,
		IsPrivate:   input.IsPrivate,
		Participants: []models.Participant{{
			UserID:   ident.UserID,
			Name:     ident.DisplayName,
			Email:    ident.Email,
			Role:     models.RoleOwner,
			JoinedAt: time.Now(),
		}},
	}
	if input.IsPrivate {
		room.Password = input.Password
	}

	if err := s.repo.Create(ctx, room); err != nil {
		s.log.WithError(err).Error("room creation failed")
		return nil, newPersistenceError("failed to create room", err)
	}

	s.log.WithFields(logrus.Fields{
		"roomId": room.ID,
		"owner":  ident.UserID,
	}).Info("room created")

	return room.Sanitize(), nil
}

// ListRooms returns a page of rooms with case-insensitive name search.
// hasMore is computed by over-fetching one record beyond the page size.
func (s *RoomService) ListRooms(ctx context.Context, callerID string, opts ListRoomsOptions) ([]models.Room, *ListMetadata, error) {
	page := opts.Page
	if page < 0 {
		page = 0
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	column, ok := sortColumns[opts.SortField]
	if !ok {
		column = "updated_at"
	}

	query := repository.ListRoomsQuery{
		Search:    strings.TrimSpace(opts.Search),
		SortField: column,
		SortDesc:  opts.SortOrder != "asc",
		Offset:    page * pageSize,
		Limit:     pageSize + 1,
	}

	s.log.WithFields(logrus.Fields{
		"caller":   callerID,
		"page":     page,
		"pageSize": pageSize,
		"sort":     column,
		"search":   query.Search,
	}).Debug("room list request")

	rooms, err := s.repo.List(ctx, query)
	if err != nil {
		s.log.WithError(err).Error("room listing failed")
		return nil, nil, newPersistenceError("failed to list rooms", err)
	}
	total, err := s.repo.Count(ctx, query.Search)
	if err != nil {
		s.log.WithError(err).Error("room count failed")
		return nil, nil, newPersistenceError("failed to list rooms", err)
	}

	hasMore := len(rooms) > pageSize
	if hasMore {
		rooms = rooms[:pageSize]
	}

	return rooms, &ListMetadata{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  hasMore,
	}, nil
}

// GetRoom returns the room only when the caller is a current participant.
func (s *RoomService) GetRoom(ctx context.Context, roomID, callerID string) (*models.Room, error) {
	room, err := s.repo.FindForParticipant(ctx, roomID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(msgRoomNotFoundOrUnauthorized)
		}
		return nil, newPersistenceError("failed to fetch room", err)
	}
	return room, nil
}

// UpdateRoom shallow-merges the permitted fields onto the room. The role
// check and the mutation happen in one conditional store statement, so a
// concurrent role change cannot slip between them. Supplying a password
// implies a private room; switching a room public clears its secret.
func (s *RoomService) UpdateRoom(ctx context.Context, roomID, callerID string, input UpdateRoomInput) (*models.Room, error) {
	fields := make(map[string]interface{})

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("room name must not be empty")
		}
		fields["name"] = name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}

	hasPassword := input.Password != nil && *input.Password != ""
	if input.IsPrivate != nil {
		if *input.IsPrivate && !hasPassword {
			return nil, newValidationError("password is required for private rooms")
		}
		if !*input.IsPrivate && hasPassword {
			return nil, newValidationError("a public room cannot have a password")
		}
		fields["is_private"] = *input.IsPrivate
		if !*input.IsPrivate {
			fields["password_hash"] = ""
		}
	}
	if hasPassword {
		hash, err := models.HashPassword(*input.Password)
		if err != nil {
			return nil, newPersistenceError("failed to hash password", err)
		}
		fields["password_hash"] = hash
		fields["is_private"] = true
	}

	if len(fields) == 0 {
		return nil, newValidationError("no updatable fields supplied")
	}

	room, err := s.repo.UpdateAuthorized(ctx, roomID, callerID,
		[]string{models.RoleOwner, models.RoleAdmin}, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(msgRoomNotFoundOrUnauthorized)
		}
		s.log.WithError(err).WithField("roomId", roomID).Error("room update failed")
		return nil, newPersistenceError("failed to update room", err)
	}

	if s.cache != nil {
		s.cache.Delete(ctx, cache.KeyRoomSettings, roomID)
	}
	return room, nil
}

// AddParticipant appends targetUserID as a member. Duplicates are rejected,
// not silently accepted.
func (s *RoomService) AddParticipant(ctx context.Context, roomID, targetUserID, requesterID string) error {
	if strings.TrimSpace(targetUserID) == "" {
		return newValidationError("userId is required")
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		room, err := s.repo.FindForParticipant(ctx, roomID, requesterID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newNotFoundError(msgRoomNotFoundOrUnauthorized)
			}
			return newPersistenceError("failed to fetch room", err)
		}

		if room.FindParticipant(targetUserID) != nil {
			return newConflictError("user is already a participant")
		}

		err = s.repo.InsertParticipant(ctx, roomID, room.Version, &models.Participant{
			UserID:   targetUserID,
			Role:     models.RoleMember,
			JoinedAt: time.Now(),
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrVersionConflict):
			continue
		case errors.Is(err, repository.ErrDuplicateEntry):
			return newConflictError("user is already a participant")
		default:
			return newPersistenceError("failed to add participant", err)
		}
	}
	return newPersistenceError("too many concurrent modifications", repository.ErrVersionConflict)
}

// RemoveParticipant removes targetUserID. Permitted for owner/admin
// requesters, or for any participant removing themself. The owner can never
// be removed through this path.
func (s *RoomService) RemoveParticipant(ctx context.Context, roomID, targetUserID, requesterID string) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		room, err := s.repo.FindByID(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return newNotFoundError("room does not exist")
			}
			return newPersistenceError("failed to fetch room", err)
		}

		target := room.FindParticipant(targetUserID)
		if target == nil {
			return newNotFoundError("participant not found")
		}
		if target.Role == models.RoleOwner {
			return newAuthorizationError("the room owner cannot be removed")
		}
		if requesterID != targetUserID {
			requester := room.FindParticipant(requesterID)
			if requester == nil || (requester.Role != models.RoleOwner && requester.Role != models.RoleAdmin) {
				return newAuthorizationError("insufficient permissions to remove participant")
			}
		}

		err = s.repo.DeleteParticipant(ctx, roomID, room.Version, targetUserID)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, repository.ErrNotFound):
			continue
		default:
			return newPersistenceError("failed to remove participant", err)
		}
	}
	return newPersistenceError("too many concurrent modifications", repository.ErrVersionConflict)
}

// GenerateInviteCode issues a bearer code valid for 24 hours. Earlier codes
// stay valid until their own expiry.
func (s *RoomService) GenerateInviteCode(ctx context.Context, roomID, callerID string) (*InviteCodeIssue, error) {
	if _, err := s.repo.FindForParticipant(ctx, roomID, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newNotFoundError(msgRoomNotFoundOrUnauthorized)
		}
		return nil, newPersistenceError("failed to fetch room", err)
	}

	code, err := randomInviteCode(inviteCodeLength)
	if err != nil {
		return nil, newPersistenceError("failed to generate invite code", err)
	}
	issue := &InviteCodeIssue{
		Code:      code,
		ExpiresAt: time.Now().Add(inviteCodeTTL),
	}

	err = s.repo.AppendInviteCode(ctx, roomID, &models.InviteCode{
		Code:      issue.Code,
		ExpiresAt: issue.ExpiresAt,
		CreatedBy: callerID,
	})
	if err != nil {
		s.log.WithError(err).WithField("roomId", roomID).Error("invite code persistence failed")
		return nil, newPersistenceError("failed to generate invite code", err)
	}
	return issue, nil
}

// JoinRoom runs the join state machine: existence, already-participant check,
// privacy gate, then participant insertion. The owner rejoining is an
// idempotent no-op; any other existing participant is a conflict. The whole
// sequence retries from the top when a concurrent write moves the room
// version.
func (s *RoomService) JoinRoom(ctx context.Context, roomID string, ident models.Identity, cred JoinCredential) (*models.Room, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		room, err := s.repo.FindByIDWithSecret(ctx, roomID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, newNotFoundError("room does not exist")
			}
			return nil, newPersistenceError("failed to fetch room", err)
		}

		if p := room.FindParticipant(ident.UserID); p != nil {
			if p.Role == models.RoleOwner {
				return room.Sanitize(), nil
			}
			return nil, newConflictError("already joined")
		}

		if room.IsPrivate {
			if err := checkPrivacyGate(room, cred); err != nil {
				s.log.WithFields(logrus.Fields{
					"roomId": roomID,
					"userId": ident.UserID,
				}).Debug("privacy gate rejected join")
				return nil, err
			}
		}

		err = s.repo.InsertParticipant(ctx, roomID, room.Version, &models.Participant{
			UserID:   ident.UserID,
			Name:     ident.DisplayName,
			Email:    ident.Email,
			Role:     models.RoleMember,
			JoinedAt: time.Now(),
		})
		switch {
		case err == nil:
			joined, err := s.repo.FindByID(ctx, roomID)
			if err != nil {
				return nil, newPersistenceError("failed to fetch room", err)
			}
			s.log.WithFields(logrus.Fields{
				"roomId":            roomID,
				"userId":            ident.UserID,
				"participantsCount": len(joined.Participants),
			}).Info("user joined room")
			return joined, nil
		case errors.Is(err, repository.ErrVersionConflict), errors.Is(err, repository.ErrDuplicateEntry):
			continue
		default:
			return nil, newPersistenceError("failed to join room", err)
		}
	}
	return nil, newPersistenceError("too many concurrent modifications", repository.ErrVersionConflict)
}

// GetAISettings exposes the room's AI configuration under the same
// authorization as a room read. Current settings are written through to the
// cache for adjacent services.
func (s *RoomService) GetAISettings(ctx context.Context, roomID, callerID string) (*models.AISettings, error) {
	room, err := s.GetRoom(ctx, roomID, callerID)
	if err != nil {
		return nil, err
	}

	settings := room.AISettings
	if !settings.Enabled {
		return &models.AISettings{Enabled: false}, nil
	}
	if s.cache != nil {
		s.cache.Set(ctx, cache.KeyRoomSettings, roomID, settings, 0)
	}
	return &settings, nil
}

// checkPrivacyGate verifies exactly one credential: the invite code when
// supplied, otherwise the password.
func checkPrivacyGate(room *models.Room, cred JoinCredential) error {
	if cred.InviteCode != "" {
		if room.LiveInviteCode(cred.InviteCode, time.Now()) == nil {
			return newAuthorizationError("invalid or expired invite code")
		}
		return nil
	}
	if cred.Password == "" {
		return newAuthorizationError("password required")
	}
	if room.ValidatePassword(cred.Password) != nil {
		return newAuthorizationError("password mismatch")
	}
	return nil
}

const inviteCodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomInviteCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = inviteCodeAlphabet[int(b[i])%len(inviteCodeAlphabet)]
	}
	return string(b), nil
}
