// Package storagemock has mocks for the storage repositories.
package storagemock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/siiapp/phasetrack/internal/model"
)

// MockProgressRepository is a mock of storage.ProgressRepository.
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) CreateProgress(ctx context.Context, p model.PhaseProgress, now time.Time) (string, error) {
	args := m.Called(ctx, p, now)
	return args.String(0), args.Error(1)
}

func (m *MockProgressRepository) GetProgress(ctx context.Context, id string) (*model.PhaseProgress, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.PhaseProgress), args.Error(1)
}

func (m *MockProgressRepository) GetProgressByOrder(ctx context.Context, orderNumber, companyCode string) (*model.PhaseProgress, error) {
	args := m.Called(ctx, orderNumber, companyCode)
	return args.Get(0).(*model.PhaseProgress), args.Error(1)
}

func (m *MockProgressRepository) TransitionProgress(ctx context.Context, p model.PhaseProgress, prevPhase model.Phase, now time.Time) error {
	args := m.Called(ctx, p, prevPhase, now)
	return args.Error(0)
}

func (m *MockProgressRepository) GetPhaseTimes(ctx context.Context, progressID string) (*model.PhaseTimes, error) {
	args := m.Called(ctx, progressID)
	return args.Get(0).(*model.PhaseTimes), args.Error(1)
}

// MockOrderCatalog is a mock of storage.OrderCatalog.
type MockOrderCatalog struct {
	mock.Mock
}

func (m *MockOrderCatalog) ListOrders(ctx context.Context, companyCode string, statusCodes []string) ([]model.OrderRow, error) {
	args := m.Called(ctx, companyCode, statusCodes)
	return args.Get(0).([]model.OrderRow), args.Error(1)
}
