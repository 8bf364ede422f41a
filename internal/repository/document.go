package repository

import (
	"context"
	"errors"

	"cdnapi/internal/model"
)

// ErrNotFound is the adapter-agnostic miss result for FindByHash and FindByID.
var ErrNotFound = errors.New("document not found")

// DocumentRepository is the metadata store for documents: strictly persistence
// operations, no business logic. Adapters own the identity scheme — the
// postgres realization assigns a surrogate UUID while the dynamo and memory
// realizations use the content hash as the id — so callers must go through
// ValidID instead of assuming a key shape, and must be prepared for either
// FindByHash or FindByID to be the primary lookup.
type DocumentRepository interface {
	// FindByHash returns the document recorded for a content hash, or
	// ErrNotFound. This is the dedup lookup.
	FindByHash(ctx context.Context, hash string) (*model.Document, error)

	// Create inserts a new document record, assigning the id per the
	// adapter's identity scheme and persisting any initial descriptions.
	// Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its externally visible id, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// AppendDescription attaches one more free-text annotation to an
	// existing document. Descriptions are the only mutable part of a record.
	AppendDescription(ctx context.Context, id string, description string) error

	// List returns up to limit documents, ordered by creation time descending
	// where the backend supports ordering, otherwise in unspecified order.
	List(ctx context.Context, limit int) ([]model.Document, error)

	// ValidID reports whether id is a well-formed key for this adapter's
	// identity scheme.
	ValidID(id string) bool
}
