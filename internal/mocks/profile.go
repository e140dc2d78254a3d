package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/mealplanner/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockProfileService is a mock implementation of the profile service
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*types.ProfileDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileDTO), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, cmd types.ProfileUpdateCommand) (*types.ProfileDTO, error) {
	args := m.Called(ctx, userID, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProfileDTO), args.Error(1)
}

// MockAiRunService is a mock implementation of the ai-run service
type MockAiRunService struct {
	mock.Mock
}

func (m *MockAiRunService) Get(ctx context.Context, userID uuid.UUID, id uint) (*types.AiRunDTO, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AiRunDTO), args.Error(1)
}
