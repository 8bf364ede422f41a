package mocks

import (
	"context"

	"cdnapi/internal/model"
	"cdnapi/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, data []byte, filename, contentType, description string) (*service.UploadResult, error) {
	args := m.Called(ctx, data, filename, contentType, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

func (m *MockDocumentService) Fetch(ctx context.Context, id string) (*service.FetchResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FetchResult), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, limit int) ([]model.DocumentListItem, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentListItem), args.Error(1)
}
