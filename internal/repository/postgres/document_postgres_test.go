package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cdnapi/internal/model"
	"cdnapi/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

const testHash = "8f434346648f6b96df89dda901c5176b10a6d83961dd3c1ac88b59b2dc327aa4"

func documentRows(id string, createdAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "hash", "storage_path", "size", "content_type", "created_at"}).
		AddRow(id, testHash, "documents/"+testHash+".txt", 100, "text/plain", createdAt)
}

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		Hash:         testHash,
		StoragePath:  "documents/" + testHash + ".txt",
		Size:         100,
		ContentType:  "text/plain",
		CreatedAt:    now,
		Descriptions: []string{"first upload"},
	}

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(sqlmock.AnyArg(), doc.Hash, doc.StoragePath, doc.Size, doc.ContentType, doc.CreatedAt).
		WillReturnRows(documentRows("generated-uuid", now))

	mock.ExpectExec("INSERT INTO document_descriptions").
		WithArgs(sqlmock.AnyArg(), "generated-uuid", "first upload").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "generated-uuid", result.ID)
	assert.Equal(t, testHash, result.Hash)
	assert.Equal(t, []string{"first upload"}, result.Descriptions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE hash = ?").
			WithArgs(testHash).
			WillReturnRows(documentRows("test-id", time.Now()))

		mock.ExpectQuery("SELECT description FROM document_descriptions").
			WithArgs("test-id").
			WillReturnRows(sqlmock.NewRows([]string{"description"}).AddRow("a note"))

		doc, err := repo.FindByHash(ctx, testHash)

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
		assert.Equal(t, []string{"a note"}, doc.Descriptions)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE hash = ?").
			WithArgs("deadbeef").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByHash(ctx, "deadbeef")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("test-id").
			WillReturnRows(documentRows("test-id", time.Now()))

		mock.ExpectQuery("SELECT description FROM document_descriptions").
			WithArgs("test-id").
			WillReturnRows(sqlmock.NewRows([]string{"description"}))

		doc, err := repo.FindByID(ctx, "test-id")

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, "test-id", doc.ID)
		assert.Empty(t, doc.Descriptions)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_AppendDescription(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO document_descriptions").
		WithArgs(sqlmock.AnyArg(), "test-id", "another note").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.AppendDescription(ctx, "test-id", "another note")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY").
			WithArgs(10).
			WillReturnRows(documentRows("test-id", time.Now()))

		mock.ExpectQuery("SELECT description FROM document_descriptions").
			WithArgs("test-id").
			WillReturnRows(sqlmock.NewRows([]string{"description"}).AddRow("a note"))

		items, err := repo.List(ctx, 10)

		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, []string{"a note"}, items[0].Descriptions)
	})

	t.Run("empty", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "hash", "storage_path", "size", "content_type", "created_at"}))

		items, err := repo.List(ctx, 10)

		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestDocumentPostgres_ValidID(t *testing.T) {
	repo := NewDocumentPostgres(nil)

	assert.True(t, repo.ValidID("a2f1c6e0-5b3d-4f9a-8c2e-1d0b9a8f7e6d"))
	assert.False(t, repo.ValidID(testHash))
	assert.False(t, repo.ValidID("not-a-uuid"))
}
