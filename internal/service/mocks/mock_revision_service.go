package mocks

import (
	"context"
	"io"

	"docrev/internal/model"
	"docrev/internal/service"
	"docrev/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockRevisionService struct {
	mock.Mock
}

func (m *MockRevisionService) Upload(ctx context.Context, in service.UploadInput) (*model.Revision, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionService) Resolve(ctx context.Context, ownerID, url string, sel service.Selector) (*model.Revision, error) {
	args := m.Called(ctx, ownerID, url, sel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionService) ResolveByHash(ctx context.Context, userID, hash string) (*model.Revision, error) {
	args := m.Called(ctx, userID, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockRevisionService) Open(ctx context.Context, rev *model.Revision) (io.ReadCloser, storage.ObjectInfo, error) {
	args := m.Called(ctx, rev)
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.ObjectInfo), args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(storage.ObjectInfo), args.Error(2)
}

func (m *MockRevisionService) Link(ctx context.Context, userID, hash string) (*service.Link, error) {
	args := m.Called(ctx, userID, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Link), args.Error(1)
}
