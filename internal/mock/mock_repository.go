package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/objectregistry/pkg/model"
)

// MockRunRepository is a mock implementation of the RunRepository interface.
type MockRunRepository struct {
	mock.Mock
}

// CreateRun mocks the CreateRun method.
func (m *MockRunRepository) CreateRun(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// UpdateRun mocks the UpdateRun method.
func (m *MockRunRepository) UpdateRun(ctx context.Context, run *model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// GetRunByUUID mocks the GetRunByUUID method.
func (m *MockRunRepository) GetRunByUUID(ctx context.Context, runUUID string) (*model.Run, error) {
	args := m.Called(ctx, runUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

// ListRuns mocks the ListRuns method.
func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Run), args.Error(1)
}

// ExpectCreateRun sets up an expectation for CreateRun.
func (m *MockRunRepository) ExpectCreateRun(err error) *mock.Call {
	return m.On("CreateRun", mock.Anything, mock.AnythingOfType("*model.Run")).Return(err)
}

// ExpectUpdateRun sets up an expectation for UpdateRun of a run reaching status.
func (m *MockRunRepository) ExpectUpdateRun(status model.RunStatus, err error) *mock.Call {
	return m.On("UpdateRun", mock.Anything, mock.MatchedBy(func(run *model.Run) bool {
		return run.Status == status
	})).Return(err)
}

// MockSnapshotRepository is a mock implementation of the SnapshotRepository interface.
type MockSnapshotRepository struct {
	mock.Mock
}

// SaveSnapshot mocks the SaveSnapshot method.
func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, report *model.PopulationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// GetLatestSnapshot mocks the GetLatestSnapshot method.
func (m *MockSnapshotRepository) GetLatestSnapshot(ctx context.Context, runUUID string) (*model.PopulationReport, error) {
	args := m.Called(ctx, runUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PopulationReport), args.Error(1)
}

// CountUnhealthy mocks the CountUnhealthy method.
func (m *MockSnapshotRepository) CountUnhealthy(ctx context.Context, runUUID string) (int, error) {
	args := m.Called(ctx, runUUID)
	return args.Int(0), args.Error(1)
}

// ExpectSaveSnapshot sets up an expectation for SaveSnapshot.
func (m *MockSnapshotRepository) ExpectSaveSnapshot(err error) *mock.Call {
	return m.On("SaveSnapshot", mock.Anything, mock.AnythingOfType("*model.PopulationReport")).Return(err)
}

// MockMaintenanceRepository is a mock implementation of the
// MaintenanceRepository interface. It also serves as a maintenance report sink.
type MockMaintenanceRepository struct {
	mock.Mock
}

// SaveMaintenance mocks the SaveMaintenance method.
func (m *MockMaintenanceRepository) SaveMaintenance(ctx context.Context, report *model.MaintenanceReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// ListMaintenance mocks the ListMaintenance method.
func (m *MockMaintenanceRepository) ListMaintenance(ctx context.Context, runUUID string) ([]*model.MaintenanceReport, error) {
	args := m.Called(ctx, runUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.MaintenanceReport), args.Error(1)
}

// ExpectSaveMaintenance sets up an expectation for SaveMaintenance.
func (m *MockMaintenanceRepository) ExpectSaveMaintenance(err error) *mock.Call {
	return m.On("SaveMaintenance", mock.Anything, mock.AnythingOfType("*model.MaintenanceReport")).Return(err)
}

// MockSuggestionRepository is a mock implementation of the SuggestionRepository interface.
type MockSuggestionRepository struct {
	mock.Mock
}

// SaveSuggestions mocks the SaveSuggestions method.
func (m *MockSuggestionRepository) SaveSuggestions(ctx context.Context, suggestions []model.Suggestion) error {
	args := m.Called(ctx, suggestions)
	return args.Error(0)
}

// GetSuggestionsByRunUUID mocks the GetSuggestionsByRunUUID method.
func (m *MockSuggestionRepository) GetSuggestionsByRunUUID(ctx context.Context, runUUID string) ([]model.Suggestion, error) {
	args := m.Called(ctx, runUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Suggestion), args.Error(1)
}

// ExpectSaveSuggestions sets up an expectation for SaveSuggestions.
func (m *MockSuggestionRepository) ExpectSaveSuggestions(err error) *mock.Call {
	return m.On("SaveSuggestions", mock.Anything, mock.Anything).Return(err)
}
