package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dossierapi/internal/model"
	"dossierapi/internal/repository"
)

// MockStore aggregates the entity repository mocks. WithinTx runs fn against
// the same mock set, so expectations cover transactional calls too.
type MockStore struct {
	mock.Mock
	DossierRepo  MockDossierRepository
	DocumentRepo MockDocumentRepository
	VersionRepo  MockVersionRepository
	FileRepo     MockFileRepository
	// WithinTxErr, when set, is returned without invoking fn.
	WithinTxErr error
}

var _ repository.Store = (*MockStore)(nil)

func (m *MockStore) Dossiers() repository.DossierRepository   { return &m.DossierRepo }
func (m *MockStore) Documents() repository.DocumentRepository { return &m.DocumentRepo }
func (m *MockStore) Versions() repository.VersionRepository   { return &m.VersionRepo }
func (m *MockStore) Files() repository.FileRepository         { return &m.FileRepo }

func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if m.WithinTxErr != nil {
		return m.WithinTxErr
	}
	return fn(m)
}

// AssertExpectations verifies all nested repository mocks.
func (m *MockStore) AssertExpectations(t mock.TestingT) bool {
	ok := m.DossierRepo.AssertExpectations(t)
	ok = m.DocumentRepo.AssertExpectations(t) && ok
	ok = m.VersionRepo.AssertExpectations(t) && ok
	ok = m.FileRepo.AssertExpectations(t) && ok
	return ok
}

type MockDossierRepository struct {
	mock.Mock
}

func (m *MockDossierRepository) FindByExternalID(ctx context.Context, externalID string) (*model.Dossier, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dossier), args.Error(1)
}

func (m *MockDossierRepository) Create(ctx context.Context, d *model.Dossier) (*model.Dossier, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dossier), args.Error(1)
}

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByDossierAndType(ctx context.Context, dossierID, typeCode string) (*model.Document, error) {
	args := m.Called(ctx, dossierID, typeCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) SetCurrentVersion(ctx context.Context, documentID string, versionID *int64) error {
	args := m.Called(ctx, documentID, versionID)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListByDossier(ctx context.Context, dossierID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, dossierID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

type MockVersionRepository struct {
	mock.Mock
}

func (m *MockVersionRepository) Create(ctx context.Context, v *model.Version) (*model.Version, error) {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}

func (m *MockVersionRepository) FindByID(ctx context.Context, id int64) (*model.Version, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}

func (m *MockVersionRepository) Rename(ctx context.Context, id int64, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockVersionRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockVersionRepository) LatestForDocument(ctx context.Context, documentID string, excludeID int64) (*model.Version, error) {
	args := m.Called(ctx, documentID, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Version), args.Error(1)
}

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, f *model.File) (*model.File, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) ListLiveByVersion(ctx context.Context, versionID int64) ([]model.File, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileRepository) MaxLivePageNumber(ctx context.Context, versionID int64) (int, error) {
	args := m.Called(ctx, versionID)
	return args.Int(0), args.Error(1)
}

func (m *MockFileRepository) SoftDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
