package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dossierapi/internal/model"
	repomocks "dossierapi/internal/repository/mocks"
)

func expectDocument(store *repomocks.MockStore, ctx context.Context, doc *model.Document) {
	store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").
		Return(&model.Dossier{ID: doc.DossierID, ExternalID: "CASE-42"}, nil)
	store.DocumentRepo.On("FindByDossierAndType", ctx, doc.DossierID, doc.TypeCode).
		Return(doc, nil)
}

func TestVersionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("generates timestamp name when empty", func(t *testing.T) {
		store := &repomocks.MockStore{}
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract"})

		var createdName string
		store.VersionRepo.On("Create", ctx, mock.AnythingOfType("*model.Version")).
			Run(func(args mock.Arguments) {
				createdName = args.Get(1).(*model.Version).Name
			}).
			Return(&model.Version{ID: 2, DocumentID: "doc-1"}, nil)

		svc := NewVersionService(store)
		v, err := svc.Create(ctx, "CASE-42", "contract", "")

		require.NoError(t, err)
		assert.Equal(t, int64(2), v.ID)
		assert.True(t, strings.HasPrefix(createdName, "Version "), "got %q", createdName)
		store.AssertExpectations(t)
	})

	t.Run("unknown document", func(t *testing.T) {
		store := &repomocks.MockStore{}
		store.DossierRepo.On("FindByExternalID", ctx, "CASE-42").Return(nil, sql.ErrNoRows)

		svc := NewVersionService(store)
		_, err := svc.Create(ctx, "CASE-42", "contract", "Draft")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestVersionService_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("renames owned version", func(t *testing.T) {
		store := &repomocks.MockStore{}
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract"})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-1"}, nil)
		store.VersionRepo.On("Rename", ctx, int64(7), "After review").Return(nil)

		svc := NewVersionService(store)
		err := svc.Rename(ctx, "CASE-42", "contract", 7, "After review")

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		svc := NewVersionService(&repomocks.MockStore{})
		err := svc.Rename(ctx, "CASE-42", "contract", 7, "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestVersionService_SetCurrent(t *testing.T) {
	ctx := context.Background()

	t.Run("switches pointer", func(t *testing.T) {
		store := &repomocks.MockStore{}
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract"})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-1"}, nil)
		store.DocumentRepo.On("SetCurrentVersion", ctx, "doc-1", mock.AnythingOfType("*int64")).Return(nil)

		svc := NewVersionService(store)
		err := svc.SetCurrent(ctx, "CASE-42", "contract", 7)

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("version of another document is not found", func(t *testing.T) {
		store := &repomocks.MockStore{}
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract"})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-other"}, nil)

		svc := NewVersionService(store)
		err := svc.SetCurrent(ctx, "CASE-42", "contract", 7)

		assert.ErrorIs(t, err, ErrNotFound)
		store.DocumentRepo.AssertNotCalled(t, "SetCurrentVersion", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestVersionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleting a non-current version leaves the pointer alone", func(t *testing.T) {
		store := &repomocks.MockStore{}
		current := int64(9)
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract", CurrentVersionID: &current})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-1"}, nil)
		store.VersionRepo.On("Delete", ctx, int64(7)).Return(nil)

		svc := NewVersionService(store)
		err := svc.Delete(ctx, "CASE-42", "contract", 7)

		assert.NoError(t, err)
		store.DocumentRepo.AssertNotCalled(t, "SetCurrentVersion", mock.Anything, mock.Anything, mock.Anything)
		store.AssertExpectations(t)
	})

	t.Run("deleting the current version promotes the newest sibling", func(t *testing.T) {
		store := &repomocks.MockStore{}
		current := int64(7)
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract", CurrentVersionID: &current})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-1"}, nil)
		store.VersionRepo.On("LatestForDocument", ctx, "doc-1", int64(7)).
			Return(&model.Version{ID: 5, DocumentID: "doc-1"}, nil)

		var promoted *int64
		store.DocumentRepo.On("SetCurrentVersion", ctx, "doc-1", mock.AnythingOfType("*int64")).
			Run(func(args mock.Arguments) {
				promoted = args.Get(2).(*int64)
			}).
			Return(nil)
		store.VersionRepo.On("Delete", ctx, int64(7)).Return(nil)

		svc := NewVersionService(store)
		err := svc.Delete(ctx, "CASE-42", "contract", 7)

		require.NoError(t, err)
		require.NotNil(t, promoted)
		assert.Equal(t, int64(5), *promoted)
		store.AssertExpectations(t)
	})

	t.Run("deleting the last version clears the pointer", func(t *testing.T) {
		store := &repomocks.MockStore{}
		current := int64(7)
		expectDocument(store, ctx, &model.Document{ID: "doc-1", DossierID: "dos-1", TypeCode: "contract", CurrentVersionID: &current})
		store.VersionRepo.On("FindByID", ctx, int64(7)).
			Return(&model.Version{ID: 7, DocumentID: "doc-1"}, nil)
		store.VersionRepo.On("LatestForDocument", ctx, "doc-1", int64(7)).
			Return(nil, sql.ErrNoRows)
		store.DocumentRepo.On("SetCurrentVersion", ctx, "doc-1", (*int64)(nil)).Return(nil)
		store.VersionRepo.On("Delete", ctx, int64(7)).Return(nil)

		svc := NewVersionService(store)
		err := svc.Delete(ctx, "CASE-42", "contract", 7)

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})
}
