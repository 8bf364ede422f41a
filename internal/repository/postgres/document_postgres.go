package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"cdnapi/internal/model"
	"cdnapi/internal/repository"
)

// DocumentPostgres is the PostgreSQL realization of repository.DocumentRepository.
// Identity scheme: surrogate UUID id with the content hash in a UNIQUE column;
// descriptions live in the document_descriptions side table. It uses
// database/sql with parameterized queries and contains no business logic.
//
// The UNIQUE constraint on hash is what settles a race between two concurrent
// first uploads of the same content: the loser's insert is rejected by the
// database, not serialized here. ETag is not persisted by this realization.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = "id, hash, storage_path, size, content_type, created_at"

// Create inserts a new document row plus one description row per initial
// annotation. The two inserts are not transactional: a failed description
// insert leaves a valid document behind, consistent with the store's
// best-effort consistency stance.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (id, hash, storage_path, size, content_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns

	row := r.db.QueryRowContext(ctx, q,
		uuid.NewString(),
		doc.Hash,
		doc.StoragePath,
		doc.Size,
		doc.ContentType,
		doc.CreatedAt,
	)
	var out model.Document
	if err := scanDocument(row, &out); err != nil {
		return nil, err
	}

	for _, d := range doc.Descriptions {
		if err := r.AppendDescription(ctx, out.ID, d); err != nil {
			return nil, err
		}
	}
	out.Descriptions = doc.Descriptions
	return &out, nil
}

// FindByHash fetches the document recorded for a content hash.
func (r *DocumentPostgres) FindByHash(ctx context.Context, hash string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE hash = $1`
	return r.findOne(ctx, q, hash)
}

// FindByID fetches a single document by its UUID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.findOne(ctx, q, id)
}

func (r *DocumentPostgres) findOne(ctx context.Context, query, arg string) (*model.Document, error) {
	row := r.db.QueryRowContext(ctx, query, arg)
	var d model.Document
	if err := scanDocument(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	descriptions, err := r.loadDescriptions(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Descriptions = descriptions
	return &d, nil
}

// AppendDescription inserts one description row for an existing document.
func (r *DocumentPostgres) AppendDescription(ctx context.Context, id string, description string) error {
	const q = `
		INSERT INTO document_descriptions (id, document_id, description)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, q, uuid.NewString(), id, description)
	return err
}

// List returns up to limit documents, newest first, each with its descriptions.
func (r *DocumentPostgres) List(ctx context.Context, limit int) ([]model.Document, error) {
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		descriptions, err := r.loadDescriptions(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Descriptions = descriptions
	}
	return items, nil
}

// ValidID reports whether id parses as a UUID.
func (r *DocumentPostgres) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *DocumentPostgres) loadDescriptions(ctx context.Context, documentID string) ([]string, error) {
	const q = `
		SELECT description
		FROM document_descriptions
		WHERE document_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var descriptions []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		descriptions = append(descriptions, d)
	}
	return descriptions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner, d *model.Document) error {
	return row.Scan(
		&d.ID,
		&d.Hash,
		&d.StoragePath,
		&d.Size,
		&d.ContentType,
		&d.CreatedAt,
	)
}
