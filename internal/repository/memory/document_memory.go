package memory

import (
	"context"
	"sort"
	"sync"

	"cdnapi/internal/hash"
	"cdnapi/internal/model"
	"cdnapi/internal/repository"
)

// DocumentMemory is the in-process realization of repository.DocumentRepository,
// used for local development and tests. Like the dynamo realization it uses the
// content hash as the id.
type DocumentMemory struct {
	mu   sync.RWMutex
	docs map[string]model.Document
}

// NewDocumentMemory creates an empty in-memory repository.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]model.Document)}
}

var _ repository.DocumentRepository = (*DocumentMemory)(nil)

// Create stores a copy of the document under its content hash.
func (r *DocumentMemory) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *doc
	stored.ID = doc.Hash
	stored.Descriptions = append([]string(nil), doc.Descriptions...)
	r.docs[stored.ID] = stored

	out := copyDocument(stored)
	return &out, nil
}

// FindByHash returns the document stored for a content hash.
func (r *DocumentMemory) FindByHash(ctx context.Context, h string) (*model.Document, error) {
	return r.FindByID(ctx, h)
}

// FindByID returns the document stored under id, or repository.ErrNotFound.
func (r *DocumentMemory) FindByID(_ context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := copyDocument(doc)
	return &out, nil
}

// AppendDescription attaches one more annotation to an existing document.
func (r *DocumentMemory) AppendDescription(_ context.Context, id string, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	doc.Descriptions = append(doc.Descriptions, description)
	r.docs[id] = doc
	return nil
}

// List returns up to limit documents, newest first.
func (r *DocumentMemory) List(_ context.Context, limit int) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]model.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		items = append(items, copyDocument(doc))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// ValidID reports whether id is a well-formed content fingerprint.
func (r *DocumentMemory) ValidID(id string) bool {
	return hash.IsValid(id)
}

func copyDocument(doc model.Document) model.Document {
	out := doc
	out.Descriptions = append([]string(nil), doc.Descriptions...)
	return out
}
