package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-teammail-backend/internal/models"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
)

// MockEmailRepository implements repository.EmailRepository
type MockEmailRepository struct {
	mock.Mock
}

func (m *MockEmailRepository) Create(ctx context.Context, email *models.Email, labelIDs []uint) error {
	args := m.Called(ctx, email, labelIDs)
	return args.Error(0)
}

func (m *MockEmailRepository) GetByID(ctx context.Context, teamID uint, id string) (*models.Email, error) {
	args := m.Called(ctx, teamID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *MockEmailRepository) GetByMessageID(ctx context.Context, teamID uint, messageID string) (*models.Email, error) {
	args := m.Called(ctx, teamID, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Email), args.Error(1)
}

func (m *MockEmailRepository) ChainIDsByMessageID(ctx context.Context, teamID uint, messageIDs []string) (map[string]string, error) {
	args := m.Called(ctx, teamID, messageIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockEmailRepository) ListByChain(ctx context.Context, teamID uint, chainID, address string) ([]models.Email, error) {
	args := m.Called(ctx, teamID, chainID, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Email), args.Error(1)
}

func (m *MockEmailRepository) ChainSubjects(ctx context.Context, teamID uint, chainIDs []string) (map[string]string, error) {
	args := m.Called(ctx, teamID, chainIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockEmailRepository) ChainExists(ctx context.Context, teamID uint, chainID string) (bool, error) {
	args := m.Called(ctx, teamID, chainID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmailRepository) ChainHasParticipant(ctx context.Context, teamID uint, chainID string, addresses []string) (bool, error) {
	args := m.Called(ctx, teamID, chainID, addresses)
	return args.Bool(0), args.Error(1)
}

func (m *MockEmailRepository) ListLatestPerChain(ctx context.Context, filter repository.ChainFilter) ([]models.ChainSummary, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.ChainSummary), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmailRepository) SetRead(ctx context.Context, teamID uint, id string, read bool) error {
	args := m.Called(ctx, teamID, id, read)
	return args.Error(0)
}

func (m *MockEmailRepository) SetStarred(ctx context.Context, teamID uint, id string, starred bool) error {
	args := m.Called(ctx, teamID, id, starred)
	return args.Error(0)
}
