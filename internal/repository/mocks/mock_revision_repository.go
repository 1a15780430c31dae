package mocks

import (
	"context"

	"docrev/internal/model"
	"docrev/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockRevisionRepository struct {
	mock.Mock
}

func (m *MockRevisionRepository) NextVersionNumber(ctx context.Context, ownerID, url string) (int, error) {
	args := m.Called(ctx, ownerID, url)
	return args.Int(0), args.Error(1)
}

func (m *MockRevisionRepository) ExistsWithHash(ctx context.Context, ownerID, url, hash string) (bool, error) {
	args := m.Called(ctx, ownerID, url, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevisionRepository) Create(ctx context.Context, rev *model.Revision) (*model.Revision, error) {
	args := m.Called(ctx, rev)
	if f, ok := args.Get(0).(func(context.Context, *model.Revision) *model.Revision); ok {
		return f(ctx, rev), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionRepository) FindLatest(ctx context.Context, ownerID, url string) (*model.Revision, error) {
	args := m.Called(ctx, ownerID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionRepository) FindByVersion(ctx context.Context, ownerID, url string, version int) (*model.Revision, error) {
	args := m.Called(ctx, ownerID, url, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionRepository) FindByHash(ctx context.Context, hash string) ([]model.Revision, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Revision), args.Error(1)
}

func (m *MockRevisionRepository) ListFamilies(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.DocumentFamily], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.DocumentFamily]), args.Error(1)
}
