package repository

import (
	"time"

	"github.com/CShah18/group-room-api/internal/models"
	"gorm.io/gorm"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(group *models.Group) error {
	return r.db.Create(group).Error
}

func (r *GroupRepository) FindByID(id string) (*models.Group, error) {
	var group models.Group
	if err := r.db.First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindParticipant(groupID, userID string) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// CommitJoin settles a reservation made against the Redis counter: the
// participant row and the group's new count land in one transaction, so
// count and membership can never diverge once committed. A duplicate
// (group_id, user_id) insert surfaces as gorm.ErrDuplicatedKey and leaves
// no partial mutation behind.
func (r *GroupRepository) CommitJoin(groupID, userID string, newCount, maxParticipants int) (*models.Participant, error) {
	participant := models.Participant{
		GroupID: groupID,
		UserID:  userID,
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&participant).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"participants_count": newCount,
		}
		if newCount >= maxParticipants {
			updates["is_complete"] = true
			updates["completed_at"] = time.Now()
		}
		return tx.Model(&models.Group{}).
			Where("id = ?", groupID).
			Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// MarkExpired flips is_expired on; the WHERE clause makes it idempotent
// and keeps the flag from ever reverting.
func (r *GroupRepository) MarkExpired(groupID string) error {
	return r.db.Model(&models.Group{}).
		Where("id = ? AND is_expired = ?", groupID, false).
		UpdateColumn("is_expired", true).Error
}
