package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/CShah18/group-room-api/internal/cache"
	"github.com/CShah18/group-room-api/internal/models"
	"github.com/CShah18/group-room-api/internal/repository"
	"github.com/CShah18/group-room-api/internal/validation"
	"gorm.io/gorm"
)

// GroupService coordinates admission: the Redis counter hands out slots
// atomically, the Postgres ledger records them durably, and a failed
// commit releases its slot so the two stay consistent without 2PC.
type GroupService struct {
	groupRepo   repository.GroupRepositoryInterface
	counter     cache.GroupCounterInterface
	statusCache *cache.StatusCache
}

func NewGroupService(
	groupRepo repository.GroupRepositoryInterface,
	counter cache.GroupCounterInterface,
	statusCache *cache.StatusCache,
) *GroupService {
	return &GroupService{
		groupRepo:   groupRepo,
		counter:     counter,
		statusCache: statusCache,
	}
}

// GroupStatus is the composed external view of a group.
type GroupStatus struct {
	ID                string     `json:"id"`
	ParticipantsCount int        `json:"participants_count"`
	MaxParticipants   int        `json:"max_participants"`
	IsComplete        bool       `json:"is_complete"`
	IsExpired         bool       `json:"is_expired"`
	ExpiresAt         time.Time  `json:"expires_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	TimeLeftSeconds   int        `json:"time_left_seconds"`
}

// JoinResult reports a successful admission.
type JoinResult struct {
	GroupID           string `json:"group_id"`
	ParticipantsCount int    `json:"participants_count"`
	IsComplete        bool   `json:"is_complete"`
}

// CreateGroup writes the ledger row, then seeds the counter with a TTL
// matching the group's lifetime. A failed seed is deliberately not rolled
// back: the group just starts cold and the first join or status read
// rehydrates it, which is cheaper than a distributed transaction here.
func (s *GroupService) CreateGroup(maxParticipants, expiryMinutes int) (*GroupStatus, error) {
	if maxParticipants < 1 {
		return nil, ErrInvalidMaxParticipants
	}
	if expiryMinutes <= 0 {
		expiryMinutes = validation.DefaultExpiryMinutes()
	}

	group := &models.Group{
		MaxParticipants: maxParticipants,
		ExpiresAt:       time.Now().Add(time.Duration(expiryMinutes) * time.Minute),
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}

	if err := s.counter.Seed(group.ID, 0, maxParticipants, group.RemainingTTL(time.Now())); err != nil {
		log.Printf("WARNING: failed to seed counter for group %s, group starts cold: %v", group.ID, err)
	}

	return &GroupStatus{
		ID:                group.ID,
		ParticipantsCount: 0,
		MaxParticipants:   maxParticipants,
		ExpiresAt:         group.ExpiresAt,
		TimeLeftSeconds:   expiryMinutes * 60,
	}, nil
}

// JoinGroup runs the admission protocol for one user:
//
//	lookup -> ensure counter -> duplicate pre-check -> reserve -> commit
//
// The reservation (atomic INCR under the capacity check) happens before
// the ledger commit; if the commit fails the slot is released. A slot is
// therefore never lost and never double-sold, though which user lands
// which slot number is whoever's increment wins.
func (s *GroupService) JoinGroup(groupID, userID string) (*JoinResult, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}

	joinable, err := s.ensureCounter(group)
	if err != nil {
		return nil, err
	}
	if !joinable {
		s.closeExpired(group)
		return nil, ErrGroupClosed
	}

	// Fast duplicate rejection so a guaranteed-duplicate request never
	// burns a reservation. The unique index still backstops the race.
	if _, err := s.groupRepo.FindParticipant(groupID, userID); err == nil {
		return nil, ErrAlreadyJoined
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check participant: %w", err)
	}

	res, err := s.counter.ReserveSlot(groupID)
	if err != nil {
		return nil, err
	}

	switch res.State {
	case cache.SlotFull:
		return nil, ErrGroupFull
	case cache.SlotMissing:
		// The entry raced out between rehydration and the reserve call.
		// Nothing was incremented, so nothing to compensate.
		if err := s.groupRepo.MarkExpired(groupID); err != nil {
			log.Printf("WARNING: failed to mark group %s expired: %v", groupID, err)
		}
		return nil, ErrGroupClosed
	}

	if _, err := s.groupRepo.CommitJoin(groupID, userID, res.NewCount, group.MaxParticipants); err != nil {
		// This user's join will not be counted either way, so give the
		// slot back. The caller sees the original failure, never the
		// compensation's.
		s.counter.Release(groupID)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("commit join: %w", err)
	}

	return &JoinResult{
		GroupID:           groupID,
		ParticipantsCount: res.NewCount,
		IsComplete:        res.NewCount == group.MaxParticipants,
	}, nil
}

// GetGroup composes the status view. For active groups the counter is
// authoritative for the count, since ledger commits can trail in-flight
// reservations; for closed groups the ledger count is final.
func (s *GroupService) GetGroup(groupID string) (*GroupStatus, error) {
	if snapshot, ok := s.statusCache.Get(groupID); ok {
		return terminalStatus(snapshot), nil
	}

	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}

	joinable, err := s.ensureCounter(group)
	if err != nil {
		return nil, err
	}
	if !joinable {
		s.closeExpired(group)
		snapshot := *group
		snapshot.IsExpired = true
		s.statusCache.Set(&snapshot)
		return terminalStatus(&snapshot), nil
	}

	count := group.ParticipantsCount
	if live, ok, err := s.counter.LiveCount(groupID); err == nil && ok {
		count = live
	}
	timeLeft := 0
	if ttl, ok := s.counter.RemainingTTL(groupID); ok {
		timeLeft = int(ttl.Seconds())
	}

	return &GroupStatus{
		ID:                group.ID,
		ParticipantsCount: count,
		MaxParticipants:   group.MaxParticipants,
		IsComplete:        group.IsComplete,
		IsExpired:         group.IsExpired,
		ExpiresAt:         group.ExpiresAt,
		CompletedAt:       group.CompletedAt,
		TimeLeftSeconds:   timeLeft,
	}, nil
}

func terminalStatus(group *models.Group) *GroupStatus {
	return &GroupStatus{
		ID:                group.ID,
		ParticipantsCount: group.ParticipantsCount,
		MaxParticipants:   group.MaxParticipants,
		IsComplete:        group.IsComplete,
		IsExpired:         true,
		ExpiresAt:         group.ExpiresAt,
		CompletedAt:       group.CompletedAt,
		TimeLeftSeconds:   0,
	}
}
