package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dossierapi/internal/model"
	"dossierapi/internal/service"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, in service.UploadInput) (*service.UploadResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadResult), args.Error(1)
}

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Fetch(ctx context.Context, dossierExternalID, typeCode string, versionID *int64) (*service.Download, error) {
	args := m.Called(ctx, dossierExternalID, typeCode, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDocumentService) FetchPage(ctx context.Context, dossierExternalID, typeCode, fileID string) (*service.Download, error) {
	args := m.Called(ctx, dossierExternalID, typeCode, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockDocumentService) DeletePage(ctx context.Context, dossierExternalID, typeCode, fileID string) error {
	args := m.Called(ctx, dossierExternalID, typeCode, fileID)
	return args.Error(0)
}

func (m *MockDocumentService) List(ctx context.Context, dossierExternalID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, dossierExternalID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

type MockVersionService struct {
	mock.Mock
}

func (m *MockVersionService) Create(ctx context.Context, dossierExternalID, typeCode, name string) (*model.Version, error) {
	args := m.Called(ctx, dossierExternalID, typeCode, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}

func (m *MockVersionService) Rename(ctx context.Context, dossierExternalID, typeCode string, versionID int64, name string) error {
	args := m.Called(ctx, dossierExternalID, typeCode, versionID, name)
	return args.Error(0)
}

func (m *MockVersionService) SetCurrent(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error {
	args := m.Called(ctx, dossierExternalID, typeCode, versionID)
	return args.Error(0)
}

func (m *MockVersionService) Delete(ctx context.Context, dossierExternalID, typeCode string, versionID int64) error {
	args := m.Called(ctx, dossierExternalID, typeCode, versionID)
	return args.Error(0)
}
