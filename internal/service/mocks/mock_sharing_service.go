package mocks

import (
	"context"

	"docrev/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockSharingService struct {
	mock.Mock
}

func (m *MockSharingService) Reconcile(ctx context.Context, ownerID, hash string, emails []string) (*model.ShareResult, error) {
	args := m.Called(ctx, ownerID, hash, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareResult), args.Error(1)
}

func (m *MockSharingService) Grantees(ctx context.Context, ownerID, hash string) ([]model.User, error) {
	args := m.Called(ctx, ownerID, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}
