package service

import (
	"sync"
	"time"

	"github.com/CShah18/group-room-api/internal/cache"
)

type counterEntry struct {
	count int
	max   int
	ttl   time.Duration
}

// MockGroupCounter is an in-memory stand-in for the Redis counter. Its
// ReserveSlot replicates the Lua script's semantics under one mutex, so
// concurrent callers see the same indivisible check-and-increment.
type MockGroupCounter struct {
	mu      sync.Mutex
	entries map[string]*counterEntry

	// SeedErr, when set, fails every Seed with that error.
	SeedErr error
	// VanishAfterEnsure deletes the entry on the next Exists call after
	// reporting it present, simulating a TTL racing out between the
	// rehydration check and the reserve call.
	VanishAfterEnsure bool
}

func NewMockGroupCounter() *MockGroupCounter {
	return &MockGroupCounter{entries: make(map[string]*counterEntry)}
}

func (m *MockGroupCounter) Exists(groupID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[groupID]
	if ok && m.VanishAfterEnsure {
		delete(m.entries, groupID)
	}
	return ok
}

func (m *MockGroupCounter) Seed(groupID string, count, max int, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SeedErr != nil {
		return m.SeedErr
	}
	m.entries[groupID] = &counterEntry{count: count, max: max, ttl: ttl}
	return nil
}

func (m *MockGroupCounter) ReserveSlot(groupID string) (cache.ReservationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[groupID]
	if !ok {
		return cache.ReservationResult{State: cache.SlotMissing}, nil
	}
	if e.count >= e.max {
		return cache.ReservationResult{State: cache.SlotFull}, nil
	}
	e.count++
	return cache.ReservationResult{State: cache.SlotReserved, NewCount: e.count}, nil
}

func (m *MockGroupCounter) Release(groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[groupID]; ok {
		e.count--
	}
}

func (m *MockGroupCounter) RemainingTTL(groupID string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[groupID]; ok {
		return e.ttl, true
	}
	return 0, false
}

func (m *MockGroupCounter) LiveCount(groupID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[groupID]; ok {
		return e.count, true, nil
	}
	return 0, false, nil
}

// Entry reports the stored counter values for assertions.
func (m *MockGroupCounter) Entry(groupID string) (count, max int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, found := m.entries[groupID]; found {
		return e.count, e.max, true
	}
	return 0, 0, false
}

// Evict drops the entry, simulating TTL expiry or store eviction.
func (m *MockGroupCounter) Evict(groupID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, groupID)
}
