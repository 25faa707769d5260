package cache

import (
	"fmt"
	"time"

	"github.com/CShah18/group-room-api/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// Terminal groups never change again, so their snapshots can be cached
// for a while without a coherence story.
const TerminalStatusTTL = 10 * time.Minute

// StatusCache keeps snapshots of closed (complete or expired) groups so
// status reads for dead groups stop hitting Postgres. Never used for
// active groups, whose live count comes from GroupCounter.
type StatusCache struct {
	redis *RedisCache
}

func NewStatusCache(redis *RedisCache) *StatusCache {
	return &StatusCache{redis: redis}
}

func statusKey(groupID string) string {
	return fmt.Sprintf("group:%s:status", groupID)
}

// Get retrieves a cached terminal snapshot
func (sc *StatusCache) Get(groupID string) (*models.Group, bool) {
	if sc == nil || sc.redis == nil {
		return nil, false
	}
	data, err := sc.redis.Get(statusKey(groupID))
	if err != nil || data == nil {
		return nil, false
	}
	var group models.Group
	if err := msgpack.Unmarshal(data, &group); err != nil {
		return nil, false
	}
	return &group, true
}

// Set stores a terminal snapshot; best-effort
func (sc *StatusCache) Set(group *models.Group) {
	if sc == nil || sc.redis == nil {
		return
	}
	data, err := msgpack.Marshal(group)
	if err != nil {
		return
	}
	_ = sc.redis.Set(statusKey(group.ID), data, TerminalStatusTTL)
}
