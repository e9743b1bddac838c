package mock

import (
	context "context"
	reflect "reflect"

	models "github.com/tamagotask/tamagotask/tamagotask/database/models"
	gomock "go.uber.org/mock/gomock"
)

// MockLeaderboardRepository is a mock of LeaderboardRepository interface.
type MockLeaderboardRepository struct {
	ctrl     *gomock.Controller
	recorder *MockLeaderboardRepositoryMockRecorder
	isgomock struct{}
}

// MockLeaderboardRepositoryMockRecorder is the mock recorder for MockLeaderboardRepository.
type MockLeaderboardRepositoryMockRecorder struct {
	mock *MockLeaderboardRepository
}

// NewMockLeaderboardRepository creates a new mock instance.
func NewMockLeaderboardRepository(ctrl *gomock.Controller) *MockLeaderboardRepository {
	mock := &MockLeaderboardRepository{ctrl: ctrl}
	mock.recorder = &MockLeaderboardRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLeaderboardRepository) EXPECT() *MockLeaderboardRepositoryMockRecorder {
	return m.recorder
}

// DeleteMonthBatch mocks base method.
func (m *MockLeaderboardRepository) DeleteMonthBatch(ctx context.Context, month string, batchSize int) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DeleteMonthBatch", ctx, month, batchSize)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// DeleteMonthBatch indicates an expected call of DeleteMonthBatch.
func (mr *MockLeaderboardRepositoryMockRecorder) DeleteMonthBatch(ctx, month, batchSize any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DeleteMonthBatch", reflect.TypeOf((*MockLeaderboardRepository)(nil).DeleteMonthBatch), ctx, month, batchSize)
}

// GetTop mocks base method.
func (m *MockLeaderboardRepository) GetTop(ctx context.Context, month string, limit int) ([]*models.LeaderboardEntry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetTop", ctx, month, limit)
	ret0, _ := ret[0].([]*models.LeaderboardEntry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetTop indicates an expected call of GetTop.
func (mr *MockLeaderboardRepositoryMockRecorder) GetTop(ctx, month, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetTop", reflect.TypeOf((*MockLeaderboardRepository)(nil).GetTop), ctx, month, limit)
}

// GetUserEntry mocks base method.
func (m *MockLeaderboardRepository) GetUserEntry(ctx context.Context, userID, month string) (*models.LeaderboardEntry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetUserEntry", ctx, userID, month)
	ret0, _ := ret[0].(*models.LeaderboardEntry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetUserEntry indicates an expected call of GetUserEntry.
func (mr *MockLeaderboardRepositoryMockRecorder) GetUserEntry(ctx, userID, month any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetUserEntry", reflect.TypeOf((*MockLeaderboardRepository)(nil).GetUserEntry), ctx, userID, month)
}

// MonthsBefore mocks base method.
func (m *MockLeaderboardRepository) MonthsBefore(ctx context.Context, cutoffMonth string) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "MonthsBefore", ctx, cutoffMonth)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// MonthsBefore indicates an expected call of MonthsBefore.
func (mr *MockLeaderboardRepositoryMockRecorder) MonthsBefore(ctx, cutoffMonth any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "MonthsBefore", reflect.TypeOf((*MockLeaderboardRepository)(nil).MonthsBefore), ctx, cutoffMonth)
}

// Upsert mocks base method.
func (m *MockLeaderboardRepository) Upsert(ctx context.Context, entry *models.LeaderboardEntry) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Upsert", ctx, entry)
	ret0, _ := ret[0].(error)
	return ret0
}

// Upsert indicates an expected call of Upsert.
func (mr *MockLeaderboardRepositoryMockRecorder) Upsert(ctx, entry any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Upsert", reflect.TypeOf((*MockLeaderboardRepository)(nil).Upsert), ctx, entry)
}
