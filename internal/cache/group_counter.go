package cache

import (
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Slot reservation outcomes. The Lua script below is the only writer of
// RESERVED counts, so reservation numbers 1..max form a strict total order.
type SlotState int

const (
	SlotMissing SlotState = iota // counter entry vanished (TTL, eviction, cold start)
	SlotFull                     // count already reached max
	SlotReserved
)

// ReservationResult is the normalized outcome of an admission attempt
// against the counter; Redis error kinds never leak past this adapter.
type ReservationResult struct {
	State    SlotState
	NewCount int // valid only when State == SlotReserved
}

// Script returns:
//
//	-2 -> count key missing
//	-1 -> already full
//	>0 -> new count after increment
//
// It must run server-side as one unit: a read-then-INCR from the client
// would let two callers both observe count < max and both increment.
var reserveScript = redis.NewScript(`
if redis.call('exists', KEYS[1]) == 0 then return -2 end
local current = tonumber(redis.call('get', KEYS[1]) or '0')
local max = tonumber(redis.call('get', KEYS[2]) or '-1')
if current >= max then return -1 end
return redis.call('incr', KEYS[1])
`)

// GroupCounterInterface defines the contract for the ephemeral admission
// counter kept per group.
type GroupCounterInterface interface {
	Exists(groupID string) bool
	Seed(groupID string, count, max int, ttl time.Duration) error
	ReserveSlot(groupID string) (ReservationResult, error)
	Release(groupID string)
	RemainingTTL(groupID string) (time.Duration, bool)
	LiveCount(groupID string) (int, bool, error)
}

// GroupCounter keeps a live count and a fixed max per group, both expiring
// with the group. It is a cache of the ledger's committed state plus any
// in-flight reservations, never an independent source of truth.
type GroupCounter struct {
	redis *RedisCache
}

func NewGroupCounter(redis *RedisCache) *GroupCounter {
	return &GroupCounter{redis: redis}
}

func countKey(groupID string) string {
	return fmt.Sprintf("group:%s:count", groupID)
}

func maxKey(groupID string) string {
	return fmt.Sprintf("group:%s:max", groupID)
}

func (gc *GroupCounter) Exists(groupID string) bool {
	return gc.redis.Exists(countKey(groupID))
}

// Seed (re)establishes both entries with a shared TTL, overwriting any
// prior value. Overwriting makes concurrent rehydration idempotent.
func (gc *GroupCounter) Seed(groupID string, count, max int, ttl time.Duration) error {
	if err := gc.redis.Set(countKey(groupID), []byte(fmt.Sprintf("%d", count)), ttl); err != nil {
		return err
	}
	return gc.redis.Set(maxKey(groupID), []byte(fmt.Sprintf("%d", max)), ttl)
}

// ReserveSlot atomically claims one admission slot. The increment IS the
// reservation: after a RESERVED result the only remaining failure point is
// the ledger commit, which the caller compensates via Release.
func (gc *GroupCounter) ReserveSlot(groupID string) (ReservationResult, error) {
	raw, err := gc.redis.RunScript(reserveScript, []string{countKey(groupID), maxKey(groupID)})
	if err != nil {
		return ReservationResult{}, fmt.Errorf("reserve slot: %w", err)
	}
	n, ok := raw.(int64)
	if !ok {
		return ReservationResult{}, fmt.Errorf("reserve slot: unexpected reply %T", raw)
	}
	switch {
	case n == -2:
		return ReservationResult{State: SlotMissing}, nil
	case n == -1:
		return ReservationResult{State: SlotFull}, nil
	default:
		return ReservationResult{State: SlotReserved, NewCount: int(n)}, nil
	}
}

// Release compensates a reservation whose ledger commit failed. Best-effort:
// the increment already happened and cannot be un-failed by retrying here,
// so a failed decrement is logged and the counter stays overstated until
// its TTL lapses and rehydration restores the ledger's true count.
func (gc *GroupCounter) Release(groupID string) {
	if err := gc.redis.Decr(countKey(groupID)); err != nil {
		log.Printf("WARNING: failed to release slot for group %s: %v", groupID, err)
	}
}

func (gc *GroupCounter) RemainingTTL(groupID string) (time.Duration, bool) {
	return gc.redis.TTL(countKey(groupID))
}

// LiveCount reads the current reserved count for an active group. Preferred
// over the ledger's participants_count, which can lag reservations under
// concurrent load. The second return is false when the entry is absent.
func (gc *GroupCounter) LiveCount(groupID string) (int, bool, error) {
	n, ok, err := gc.redis.GetInt(countKey(groupID))
	return int(n), ok, err
}
