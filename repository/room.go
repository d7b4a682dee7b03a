package repository

import (
	"context"

	"github.com/chatly/chat_management_backend/models"
)

// ListRoomsQuery is a pre-validated listing predicate. SortField is a column
// name already whitelisted by the caller.
type ListRoomsQuery struct {
	Search    string
	SortField string
	SortDesc  bool
	Offset    int
	Limit     int
}

// RoomRepository is the store contract for room documents. Lookups that omit
// the secret clear the password hash before returning; only
// FindByIDWithSecret exposes it. Conditional writes return ErrVersionConflict
// when the room changed underneath the caller and ErrDuplicateEntry when the
// participant uniqueness constraint is violated.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error

	// FindByID loads a room with its participants, without the secret.
	FindByID(ctx context.Context, id string) (*models.Room, error)

	// FindByIDWithSecret loads a room with participants, invite codes and
	// the password hash. Used only by the join privacy gate.
	FindByIDWithSecret(ctx context.Context, id string) (*models.Room, error)

	// FindForParticipant loads a room only when userID is a current
	// participant. A missing room and a non-participant caller are
	// indistinguishable: both return ErrNotFound.
	FindForParticipant(ctx context.Context, id, userID string) (*models.Room, error)

	List(ctx context.Context, q ListRoomsQuery) ([]models.Room, error)
	Count(ctx context.Context, search string) (int64, error)

	// UpdateAuthorized applies fields to the room in a single conditional
	// statement matching {id AND requester has one of roles}. Returns
	// ErrNotFound when nothing matched, so authorization and existence
	// cannot be told apart and no check-then-write race exists.
	UpdateAuthorized(ctx context.Context, id, requesterID string, roles []string, fields map[string]interface{}) (*models.Room, error)

	// InsertParticipant appends a participant iff the room version still
	// equals expectedVersion, bumping the version in the same transaction.
	InsertParticipant(ctx context.Context, roomID string, expectedVersion uint, p *models.Participant) error

	// DeleteParticipant removes a participant iff the room version still
	// equals expectedVersion, bumping the version in the same transaction.
	DeleteParticipant(ctx context.Context, roomID string, expectedVersion uint, userID string) error

	AppendInviteCode(ctx context.Context, roomID string, code *models.InviteCode) error
}
