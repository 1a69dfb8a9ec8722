package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossierapi/internal/model"
)

var fileCols = []string{
	"id", "document_id", "version_id", "storage_path", "original_name",
	"extension", "content_type", "size", "page_number", "deleted_at", "created_at",
}

func TestFileStore_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	in := &model.File{
		ID:           "file-1",
		DocumentID:   "doc-1",
		VersionID:    7,
		StoragePath:  "dossiers/CASE-42/contract/file-1.jpg",
		OriginalName: "scan.jpg",
		Extension:    "jpg",
		ContentType:  "image/jpeg",
		Size:         2048,
		PageNumber:   3,
		CreatedAt:    now,
	}
	rows := sqlmock.NewRows(fileCols).
		AddRow(in.ID, in.DocumentID, in.VersionID, in.StoragePath, in.OriginalName,
			in.Extension, in.ContentType, in.Size, in.PageNumber, nil, in.CreatedAt)
	mock.ExpectQuery("INSERT INTO files").
		WithArgs(in.ID, in.DocumentID, in.VersionID, in.StoragePath, in.OriginalName,
			in.Extension, in.ContentType, in.Size, in.PageNumber, in.CreatedAt).
		WillReturnRows(rows)

	out, err := NewStore(db).Files().Create(ctx, in)

	require.NoError(t, err)
	assert.Equal(t, in.StoragePath, out.StoragePath)
	assert.Equal(t, 3, out.PageNumber)
	assert.Nil(t, out.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileStore_ListLiveByVersion(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows(fileCols).
		AddRow("file-1", "doc-1", int64(7), "p/1.jpg", "scan.pdf", "jpg", "image/jpeg", int64(100), 1, nil, now).
		AddRow("file-2", "doc-1", int64(7), "p/2.jpg", "scan.pdf", "jpg", "image/jpeg", int64(120), 2, nil, now)
	mock.ExpectQuery("SELECT (.+) FROM files").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	files, err := NewStore(db).Files().ListLiveByVersion(ctx, 7)

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, 1, files[0].PageNumber)
	assert.Equal(t, 2, files[1].PageNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFileStore_MaxLivePageNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("with live files", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(page_number\), 0\)`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))

		max, err := NewStore(db).Files().MaxLivePageNumber(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, 4, max)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty version", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT COALESCE\(MAX\(page_number\), 0\)`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

		max, err := NewStore(db).Files().MaxLivePageNumber(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, 0, max)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFileStore_SoftDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("marks live file deleted", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE files SET deleted_at").
			WithArgs("file-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = NewStore(db).Files().SoftDelete(ctx, "file-1")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second delete reports no rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE files SET deleted_at").
			WithArgs("file-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = NewStore(db).Files().SoftDelete(ctx, "file-1")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
