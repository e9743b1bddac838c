package mock

import (
	context "context"
	reflect "reflect"

	remote "github.com/tamagotask/tamagotask/tamagotask/remote"
	gomock "go.uber.org/mock/gomock"
)

// MockProgressRepository is a mock of ProgressRepository interface.
type MockProgressRepository struct {
	ctrl     *gomock.Controller
	recorder *MockProgressRepositoryMockRecorder
	isgomock struct{}
}

// MockProgressRepositoryMockRecorder is the mock recorder for MockProgressRepository.
type MockProgressRepositoryMockRecorder struct {
	mock *MockProgressRepository
}

// NewMockProgressRepository creates a new mock instance.
func NewMockProgressRepository(ctrl *gomock.Controller) *MockProgressRepository {
	mock := &MockProgressRepository{ctrl: ctrl}
	mock.recorder = &MockProgressRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProgressRepository) EXPECT() *MockProgressRepositoryMockRecorder {
	return m.recorder
}

// AppendActivity mocks base method.
func (m *MockProgressRepository) AppendActivity(ctx context.Context, rec *remote.ActivityRecord) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AppendActivity", ctx, rec)
	ret0, _ := ret[0].(error)
	return ret0
}

// AppendActivity indicates an expected call of AppendActivity.
func (mr *MockProgressRepositoryMockRecorder) AppendActivity(ctx, rec any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AppendActivity", reflect.TypeOf((*MockProgressRepository)(nil).AppendActivity), ctx, rec)
}

// Get mocks base method.
func (m *MockProgressRepository) Get(ctx context.Context, userID string) (*remote.RemoteProgressRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, userID)
	ret0, _ := ret[0].(*remote.RemoteProgressRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockProgressRepositoryMockRecorder) Get(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockProgressRepository)(nil).Get), ctx, userID)
}

// Merge mocks base method.
func (m *MockProgressRepository) Merge(ctx context.Context, userID string, delta remote.ProgressDelta) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Merge", ctx, userID, delta)
	ret0, _ := ret[0].(error)
	return ret0
}

// Merge indicates an expected call of Merge.
func (mr *MockProgressRepositoryMockRecorder) Merge(ctx, userID, delta any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Merge", reflect.TypeOf((*MockProgressRepository)(nil).Merge), ctx, userID, delta)
}

// RecentActivity mocks base method.
func (m *MockProgressRepository) RecentActivity(ctx context.Context, userID string, limit int) ([]*remote.ActivityRecord, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RecentActivity", ctx, userID, limit)
	ret0, _ := ret[0].([]*remote.ActivityRecord)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RecentActivity indicates an expected call of RecentActivity.
func (mr *MockProgressRepositoryMockRecorder) RecentActivity(ctx, userID, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RecentActivity", reflect.TypeOf((*MockProgressRepository)(nil).RecentActivity), ctx, userID, limit)
}
