package service

import (
	"sync"
	"time"

	"github.com/CShah18/group-room-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockGroupRepository is an in-memory ledger for tests. It implements
// repository.GroupRepositoryInterface and mirrors the real adapter's error
// contract (gorm.ErrRecordNotFound, gorm.ErrDuplicatedKey). Safe for
// concurrent use so admission races can be exercised.
type MockGroupRepository struct {
	mu           sync.Mutex
	groups       map[string]*models.Group
	participants map[string]map[string]*models.Participant

	// CommitErr, when set, fails every CommitJoin with that error.
	CommitErr error
	// ForceDuplicateOnCommit makes CommitJoin report a unique-index hit
	// even when the pre-check saw no participant, to simulate losing the
	// pre-check race.
	ForceDuplicateOnCommit bool
}

func NewMockGroupRepository() *MockGroupRepository {
	return &MockGroupRepository{
		groups:       make(map[string]*models.Group),
		participants: make(map[string]map[string]*models.Participant),
	}
}

func (m *MockGroupRepository) Create(group *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	copied := *group
	m.groups[group.ID] = &copied
	return nil
}

func (m *MockGroupRepository) FindByID(id string) (*models.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[id]; ok {
		copied := *g
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) FindParticipant(groupID, userID string) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ps, ok := m.participants[groupID]; ok {
		if p, ok := ps[userID]; ok {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *MockGroupRepository) CommitJoin(groupID, userID string, newCount, maxParticipants int) (*models.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CommitErr != nil {
		return nil, m.CommitErr
	}
	if m.ForceDuplicateOnCommit {
		return nil, gorm.ErrDuplicatedKey
	}
	if ps, ok := m.participants[groupID]; ok {
		if _, ok := ps[userID]; ok {
			return nil, gorm.ErrDuplicatedKey
		}
	}

	g, ok := m.groups[groupID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}

	p := &models.Participant{
		ID:       uuid.NewString(),
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
	if m.participants[groupID] == nil {
		m.participants[groupID] = make(map[string]*models.Participant)
	}
	m.participants[groupID][userID] = p

	g.ParticipantsCount = newCount
	if newCount >= maxParticipants {
		g.IsComplete = true
		now := time.Now()
		g.CompletedAt = &now
	}

	copied := *p
	return &copied, nil
}

func (m *MockGroupRepository) MarkExpired(groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[groupID]; ok {
		g.IsExpired = true
	}
	return nil
}

// ParticipantCount reports committed participants for assertions.
func (m *MockGroupRepository) ParticipantCount(groupID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.participants[groupID])
}

// Group returns the stored ledger row for assertions.
func (m *MockGroupRepository) Group(groupID string) *models.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[groupID]; ok {
		copied := *g
		return &copied
	}
	return nil
}
