package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dossierapi/internal/model"
	"dossierapi/internal/policy"
	"dossierapi/internal/processor"
	repomocks "dossierapi/internal/repository/mocks"
	storagemocks "dossierapi/internal/storage/mocks"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Process(ctx context.Context, keyPrefix string, up processor.Upload) ([]processor.Artifact, error) {
	args := m.Called(ctx, keyPrefix, up)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]processor.Artifact), args.Error(1)
}

func uploadFixture() UploadInput {
	return UploadInput{
		DossierExternalID: "CASE-42",
		TypeCode:          "contract",
		Files: []processor.Upload{
			{Filename: "scan.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
	}
}

func TestUploadService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty batch", func(t *testing.T) {
		svc := NewUploadService(&repomocks.MockStore{}, &storagemocks.MockStorage{}, &mockClassifier{}, policy.NewStatic([]string{"pdf"}), "default")

		in := uploadFixture()
		in.Files = nil
		res, err := svc.Upload(ctx, in)

		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		svc := NewUploadService(&repomocks.MockStore{}, &storagemocks.MockStorage{}, &mockClassifier{}, policy.NewStatic([]string{"pdf"}), "default")

		in := uploadFixture()
		in.TypeCode = ""
		_, err := svc.Upload(ctx, in)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects disallowed extension before processing", func(t *testing.T) {
		store := &repomocks.MockStore{}
		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").Return(nil, sql.ErrNoRows)
		classifier := &mockClassifier{}

		svc := NewUploadService(store, &storagemocks.MockStorage{}, classifier, policy.NewStatic([]string{"pdf", "jpg"}), "default")

		in := uploadFixture()
		in.Files = []processor.Upload{{Filename: "malware.exe", Data: []byte("MZ")}}
		res, err := svc.Upload(ctx, in)

		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrValidation)
		classifier.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("splits pdf into pages and binds a fresh version", func(t *testing.T) {
		store := &repomocks.MockStore{}
		objects := &storagemocks.MockStorage{}
		classifier := &mockClassifier{}

		in := uploadFixture()

		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").Return(nil, sql.ErrNoRows)
		store.DossierRepo.On("Create", ctx, mock.AnythingOfType("*model.Dossier")).
			Return(&model.Dossier{ID: "dos-1", ExternalID: "CASE-42", SchemaName: "default"}, nil)
		store.DocumentRepo.On("FindByDossierAndType", ctx, "dos-1", "contract").Return(nil, sql.ErrNoRows)
		store.DocumentRepo.On("Create", ctx, mock.AnythingOfType("*model.Document")).
			Return(&model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract"}, nil)
		store.VersionRepo.On("Create", ctx, mock.AnythingOfType("*model.Version")).
			Return(&model.Version{ID: 1, DocumentID: "doc-1", Name: "Version 2026-01-05 10:00:00"}, nil)
		store.FileRepo.On("MaxLivePageNumber", ctx, int64(1)).Return(0, nil)

		var pages []int
		store.FileRepo.On("Create", ctx, mock.AnythingOfType("*model.File")).
			Run(func(args mock.Arguments) {
				f := args.Get(1).(*model.File)
				pages = append(pages, f.PageNumber)
			}).
			Return(&model.File{}, nil).Twice()
		store.DocumentRepo.On("SetCurrentVersion", ctx, "doc-1", mock.AnythingOfType("*int64")).Return(nil)

		classifier.On("Process", ctx, "dossiers/CASE-42/contract", in.Files[0]).
			Return([]processor.Artifact{
				{ID: "file-1", StoragePath: "dossiers/CASE-42/contract/p1.jpg", OriginalName: "scan.pdf", Extension: "jpg", ContentType: "image/jpeg", Size: 100, PageIndex: 1},
				{ID: "file-2", StoragePath: "dossiers/CASE-42/contract/p2.jpg", OriginalName: "scan.pdf", Extension: "jpg", ContentType: "image/jpeg", Size: 120, PageIndex: 2},
			}, nil)

		svc := NewUploadService(store, objects, classifier, policy.NewStatic([]string{"pdf", "jpg"}), "default")
		res, err := svc.Upload(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, 1, res.FilesProcessed)
		assert.Equal(t, 2, res.PagesAdded)
		assert.Equal(t, []int{1, 2}, pages)
		require.NotNil(t, res.Version)
		assert.Equal(t, int64(1), res.Version.ID)
		require.NotNil(t, res.Document.CurrentVersionID)
		assert.Equal(t, int64(1), *res.Document.CurrentVersionID)
		store.AssertExpectations(t)
		classifier.AssertExpectations(t)
	})

	t.Run("appends to current version continuing page numbers", func(t *testing.T) {
		store := &repomocks.MockStore{}
		objects := &storagemocks.MockStorage{}
		classifier := &mockClassifier{}

		currentVersion := int64(7)
		in := uploadFixture()
		in.Files = []processor.Upload{{Filename: "extra.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}}

		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").
			Return(&model.Dossier{ID: "dos-1", ExternalID: "CASE-42", SchemaName: "invoices"}, nil)
		store.DocumentRepo.On("FindByDossierAndType", ctx, "dos-1", "contract").
			Return(&model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract", CurrentVersionID: &currentVersion}, nil)
		store.VersionRepo.On("FindByID", ctx, currentVersion).
			Return(&model.Version{ID: currentVersion, DocumentID: "doc-1"}, nil)
		store.FileRepo.On("MaxLivePageNumber", ctx, currentVersion).Return(3, nil)

		var page int
		store.FileRepo.On("Create", ctx, mock.AnythingOfType("*model.File")).
			Run(func(args mock.Arguments) {
				page = args.Get(1).(*model.File).PageNumber
			}).
			Return(&model.File{}, nil).Once()

		classifier.On("Process", ctx, "dossiers/CASE-42/contract", in.Files[0]).
			Return([]processor.Artifact{
				{ID: "file-9", StoragePath: "dossiers/CASE-42/contract/f9.jpg", Extension: "jpg", ContentType: "image/jpeg", Size: 50},
			}, nil)

		svc := NewUploadService(store, objects, classifier, policy.NewStatic([]string{"pdf", "jpg"}), "default")
		res, err := svc.Upload(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, 4, page)
		assert.Equal(t, 1, res.PagesAdded)
		// No SetCurrentVersion call: the pointer was already set.
		store.AssertExpectations(t)
	})

	t.Run("discards stored objects when a later file fails", func(t *testing.T) {
		store := &repomocks.MockStore{}
		objects := &storagemocks.MockStorage{}
		classifier := &mockClassifier{}

		in := uploadFixture()
		in.Files = []processor.Upload{
			{Filename: "good.jpg", Data: []byte{0xff, 0xd8}},
			{Filename: "broken.pdf", Data: []byte("not a pdf")},
		}

		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").Return(nil, sql.ErrNoRows)

		classifier.On("Process", ctx, "dossiers/CASE-42/contract", in.Files[0]).
			Return([]processor.Artifact{
				{ID: "file-1", StoragePath: "dossiers/CASE-42/contract/f1.jpg", Extension: "jpg"},
			}, nil)
		classifier.On("Process", ctx, "dossiers/CASE-42/contract", in.Files[1]).
			Return(nil, processor.ErrProcessing)

		objects.On("Delete", ctx, "dossiers/CASE-42/contract/f1.jpg").Return(nil)

		svc := NewUploadService(store, objects, classifier, policy.NewStatic([]string{"pdf", "jpg"}), "default")
		res, err := svc.Upload(ctx, in)

		assert.Nil(t, res)
		assert.ErrorIs(t, err, processor.ErrProcessing)
		objects.AssertExpectations(t)
	})

	t.Run("discards stored objects when persistence fails", func(t *testing.T) {
		store := &repomocks.MockStore{}
		objects := &storagemocks.MockStorage{}
		classifier := &mockClassifier{}

		in := uploadFixture()
		in.Files = []processor.Upload{{Filename: "scan.jpg", Data: []byte{0xff, 0xd8}}}

		currentVersion := int64(7)
		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").
			Return(&model.Dossier{ID: "dos-1", ExternalID: "CASE-42", SchemaName: "default"}, nil)
		store.DocumentRepo.On("FindByDossierAndType", ctx, "dos-1", "contract").
			Return(&model.Document{ID: "doc-1", DossierID: "dos-1", CurrentVersionID: &currentVersion}, nil)
		store.VersionRepo.On("FindByID", ctx, currentVersion).
			Return(&model.Version{ID: currentVersion, DocumentID: "doc-1"}, nil)
		store.FileRepo.On("MaxLivePageNumber", ctx, currentVersion).Return(0, nil)
		store.FileRepo.On("Create", ctx, mock.AnythingOfType("*model.File")).
			Return(nil, errors.New("constraint violation"))

		classifier.On("Process", ctx, "dossiers/CASE-42/contract", in.Files[0]).
			Return([]processor.Artifact{
				{ID: "file-1", StoragePath: "dossiers/CASE-42/contract/f1.jpg", Extension: "jpg"},
			}, nil)
		objects.On("Delete", ctx, "dossiers/CASE-42/contract/f1.jpg").Return(nil)

		svc := NewUploadService(store, objects, classifier, policy.NewStatic([]string{"pdf", "jpg"}), "default")
		res, err := svc.Upload(ctx, in)

		assert.Nil(t, res)
		assert.Error(t, err)
		objects.AssertExpectations(t)
	})

	t.Run("existing dossier keeps its stored schema", func(t *testing.T) {
		store := &repomocks.MockStore{}
		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").
			Return(&model.Dossier{ID: "dos-1", SchemaName: "invoices"}, nil)

		svc := &uploadService{store: store, defaultSchema: "default"}
		in := uploadFixture()
		in.SchemaName = "other"

		schema, err := svc.resolveSchema(ctx, in)

		require.NoError(t, err)
		assert.Equal(t, "invoices", schema)
	})
}
