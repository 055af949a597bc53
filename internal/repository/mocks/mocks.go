package mocks

import (
	"context"
	"time"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/stretchr/testify/mock"
)

// RobotRepository is a mock for robot.Repository.
type RobotRepository struct {
	mock.Mock
}

func (m *RobotRepository) Create(ctx context.Context, in robot.Input) (*robot.Robot, error) {
	args := m.Called(ctx, in)
	if rec, ok := args.Get(0).(*robot.Robot); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) Update(ctx context.Context, id string, patch robot.Patch) (*robot.Robot, error) {
	args := m.Called(ctx, id, patch)
	if rec, ok := args.Get(0).(*robot.Robot); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RobotRepository) Archive(ctx context.Context, id string) (*robot.Robot, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*robot.Robot); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) Unarchive(ctx context.Context, id string) (*robot.Robot, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(*robot.Robot); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) Get(ctx context.Context, id string, includeArchived bool) (*robot.Robot, error) {
	args := m.Called(ctx, id, includeArchived)
	if rec, ok := args.Get(0).(*robot.Robot); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) List(ctx context.Context, opts robot.ListOptions) ([]robot.Robot, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]robot.Robot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RobotRepository) Count(ctx context.Context, includeArchived bool) (int, error) {
	args := m.Called(ctx, includeArchived)
	return args.Int(0), args.Error(1)
}

func (m *RobotRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *RobotRepository) Export(ctx context.Context, includeArchived bool) ([]robot.Robot, error) {
	args := m.Called(ctx, includeArchived)
	if list, ok := args.Get(0).([]robot.Robot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// KVStore is a mock for kv.Store.
type KVStore struct {
	mock.Mock
}

func (m *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *KVStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Recorder is a mock for robot.Recorder.
type Recorder struct {
	mock.Mock
}

func (m *Recorder) ObserveOperation(store, op, outcome string, elapsed time.Duration) {
	m.Called(store, op, outcome, elapsed)
}
