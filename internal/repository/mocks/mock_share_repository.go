package mocks

import (
	"context"

	"docrev/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) ListGrantees(ctx context.Context, revisionID string) ([]model.User, error) {
	args := m.Called(ctx, revisionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockShareRepository) GranteesByRevision(ctx context.Context, revisionIDs []string) (map[string][]model.User, error) {
	args := m.Called(ctx, revisionIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]model.User), args.Error(1)
}

func (m *MockShareRepository) HasGrant(ctx context.Context, revisionID, userID string) (bool, error) {
	args := m.Called(ctx, revisionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockShareRepository) Add(ctx context.Context, grant *model.ShareGrant) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

func (m *MockShareRepository) Remove(ctx context.Context, revisionID, granteeID string) error {
	args := m.Called(ctx, revisionID, granteeID)
	return args.Error(0)
}
