package repository

import (
	"github.com/CShah18/group-room-api/internal/models"
)

// GroupRepositoryInterface defines the contract for the durable group ledger.
// It is the authoritative record of groups and their participants; the Redis
// counter is only a cache of it.
type GroupRepositoryInterface interface {
	Create(group *models.Group) error
	FindByID(id string) (*models.Group, error)
	FindParticipant(groupID, userID string) (*models.Participant, error)
	// CommitJoin inserts the participant row and moves the group's count to
	// newCount in a single transaction. Returns gorm.ErrDuplicatedKey when
	// the (groupID, userID) uniqueness invariant is violated concurrently.
	CommitJoin(groupID, userID string, newCount, maxParticipants int) (*models.Participant, error)
	MarkExpired(groupID string) error
}
