package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"careercompass/internal/auth"
	"careercompass/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	args := m.Called(ctx, id, googleID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, skills []string) error {
	args := m.Called(ctx, id, skills)
	return args.Error(0)
}

// MockRevocationStore is a mock implementation of RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockVerifier is a mock implementation of IdentityVerifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, credential string) (*auth.ExternalIdentity, error) {
	args := m.Called(ctx, credential)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.ExternalIdentity), args.Error(1)
}

// MockCompleter is a mock implementation of Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Error(1)
}

// memoryRoadmaps is an in-memory RoadmapRepository with the same overwrite
// and revision semantics as the gorm one.
type memoryRoadmaps struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]model.Roadmap
	failing error
}

func newMemoryRoadmaps() *memoryRoadmaps {
	return &memoryRoadmaps{rows: make(map[uuid.UUID]model.Roadmap)}
}

func (m *memoryRoadmaps) Save(ctx context.Context, userID uuid.UUID, roadmap *model.Roadmap) (*model.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	row := clone(*roadmap)
	row.UserID = userID
	row.Revision = m.rows[userID].Revision + 1
	row.UpdatedAt = time.Now()
	m.rows[userID] = row
	out := clone(row)
	return &out, nil
}

func (m *memoryRoadmaps) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	row, ok := m.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := clone(row)
	return &out, nil
}

func (m *memoryRoadmaps) UpdateLocked(ctx context.Context, userID uuid.UUID, fn func(*model.Roadmap) error) (*model.Roadmap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing != nil {
		return nil, m.failing
	}
	row, ok := m.rows[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	work := clone(row)
	if err := fn(&work); err != nil {
		return nil, err
	}
	m.rows[userID] = work
	out := clone(work)
	return &out, nil
}

func clone(r model.Roadmap) model.Roadmap {
	r.MissingSkills = append([]string(nil), r.MissingSkills...)
	r.MonthlyPlan = append([]model.MonthPlan(nil), r.MonthlyPlan...)
	return r
}

// memoryCache is an in-memory RoadmapCache.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]interface{}
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string]interface{})}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return false
	}
	r, ok := v.(model.Roadmap)
	if !ok {
		return false
	}
	*(dst.(*model.Roadmap)) = clone(r)
	return true
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = clone(*(value.(*model.Roadmap)))
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// recordingLogger collects warnings.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}
