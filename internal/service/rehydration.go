package service

import (
	"fmt"
	"log"
	"time"

	"github.com/CShah18/group-room-api/internal/models"
)

// ensureCounter decides what a missing counter entry means for this group
// and repairs it when possible. Returns false when the group is closed or
// expired and must never be reseeded.
//
// The seed is a full overwrite derived from the ledger row, so two callers
// rehydrating the same group concurrently converge on the same values.
// A join committing between our ledger read and the seed can be briefly
// shadowed by the stale count; the window is accepted as-is and heals on
// the next TTL cycle.
func (s *GroupService) ensureCounter(group *models.Group) (bool, error) {
	if s.counter.Exists(group.ID) {
		return true, nil
	}

	now := time.Now()
	if group.Closed(now) {
		return false, nil
	}

	// Rebuild the cache from the authoritative committed count; never
	// more generous than what the ledger has actually recorded.
	err := s.counter.Seed(group.ID, group.ParticipantsCount, group.MaxParticipants, group.RemainingTTL(now))
	if err != nil {
		return false, fmt.Errorf("rehydrate counter for group %s: %w", group.ID, err)
	}
	return true, nil
}

// closeExpired flips the ledger's expired flag once the deadline has
// actually passed. A group that is merely complete keeps is_expired false.
func (s *GroupService) closeExpired(group *models.Group) {
	if group.IsExpired || group.ExpiresAt.After(time.Now()) {
		return
	}
	if err := s.groupRepo.MarkExpired(group.ID); err != nil {
		log.Printf("WARNING: failed to mark group %s expired: %v", group.ID, err)
	}
}
