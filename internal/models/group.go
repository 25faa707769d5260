package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a capacity-bounded, time-bounded room users race to join.
// ParticipantsCount mirrors committed joins only; the live count for an
// active group lives in Redis (see cache.GroupCounter).
type Group struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	MaxParticipants   int        `gorm:"not null" json:"max_participants"`
	ParticipantsCount int        `gorm:"not null;default:0" json:"participants_count"`
	IsComplete        bool       `gorm:"not null;default:false" json:"is_complete"`
	IsExpired         bool       `gorm:"not null;default:false" json:"is_expired"`
	ExpiresAt         time.Time  `gorm:"not null" json:"expires_at"`
	CompletedAt       *time.Time `json:"completed_at"`

	Participants []Participant `gorm:"foreignKey:GroupID" json:"-"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// Closed reports whether the group must never accept another join:
// the deadline has passed, or a terminal flag is already set.
func (g *Group) Closed(now time.Time) bool {
	return !g.ExpiresAt.After(now) || g.IsExpired || g.IsComplete
}

// RemainingTTL returns the time left until ExpiresAt, floored at one
// second so a freshly rehydrated counter entry is never born dead.
func (g *Group) RemainingTTL(now time.Time) time.Duration {
	ttl := g.ExpiresAt.Sub(now)
	if ttl < time.Second {
		return time.Second
	}
	return ttl.Truncate(time.Second)
}

// Participant records one committed admission. The (GroupID, UserID)
// unique index is the last line of defense against double joins; the
// Redis pre-check is only an optimization.
type Participant struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_user" json:"group_id"`
	UserID    string    `gorm:"size:255;not null;uniqueIndex:idx_group_user" json:"user_id"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joined_at"`
	CreatedAt time.Time `json:"-"`

	Group Group `gorm:"foreignKey:GroupID" json:"-"`
}

func (p *Participant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
