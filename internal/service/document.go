package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cdnapi/internal/hash"
	"cdnapi/internal/model"
	"cdnapi/internal/repository"
	"cdnapi/internal/storage"
)

var (
	ErrEmptyFile = errors.New("file is empty")
	ErrInvalidID = errors.New("invalid document id")
	ErrNotFound  = errors.New("document not found")
)

const (
	defaultContentType = "application/octet-stream"
	defaultExtension   = ".bin"
	keyPrefix          = "documents/"
	maxListLimit       = 100
)

// UploadResult is returned for both fresh uploads and deduplicated ones; the
// caller cannot tell the two apart, which is the point.
type UploadResult struct {
	ID   string `json:"id"`
	Hash string `json:"hash"`
}

// FetchResult carries a document's bytes plus the content type recorded for it.
type FetchResult struct {
	Data        []byte
	ContentType string
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores content under its SHA-256 fingerprint. Re-uploading bytes
	// already stored writes no new blob and returns the existing identity;
	// a non-empty description is appended to the record either way.
	Upload(ctx context.Context, data []byte, filename, contentType, description string) (*UploadResult, error)

	// Fetch returns a stored document's bytes and content type by its id.
	Fetch(ctx context.Context, id string) (*FetchResult, error)

	// List returns up to limit stored documents for the inventory endpoint.
	List(ctx context.Context, limit int) ([]model.DocumentListItem, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, data []byte, filename, contentType, description string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	sum := hash.Sum(data)

	// Dedup check first: a hit means the bytes are already on disk somewhere,
	// so only the annotation (if any) is written.
	existing, err := s.repo.FindByHash(ctx, sum)
	if err == nil {
		if description != "" {
			if err := s.repo.AppendDescription(ctx, existing.ID, description); err != nil {
				return nil, fmt.Errorf("append description: %w", err)
			}
		}
		return &UploadResult{ID: existing.ID, Hash: existing.Hash}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if contentType == "" {
		contentType = defaultContentType
	}
	key := storageKey(sum, filename)

	info, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &model.Document{
		Hash:        sum,
		StoragePath: key,
		Size:        int64(len(data)),
		ContentType: contentType,
		ETag:        info.ETag,
		CreatedAt:   time.Now().UTC(),
	}
	if description != "" {
		doc.Descriptions = []string{description}
	}

	// The blob is already written; a metadata failure leaves it orphaned
	// rather than attempting a delete, so a retry of the same upload can
	// complete the record.
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return &UploadResult{ID: stored.ID, Hash: stored.Hash}, nil
}

// Fetch returns a document's bytes by id. A record whose blob has gone
// missing reads the same as no record at all.
func (s *documentService) Fetch(ctx context.Context, id string) (*FetchResult, error) {
	if !s.repo.ValidID(id) {
		return nil, ErrInvalidID
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rc, info, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read from storage: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read from storage: %w", err)
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = info.ContentType
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	return &FetchResult{Data: data, ContentType: contentType}, nil
}

// List returns up to limit documents shaped for the inventory response,
// filling in defaults for fields older records may lack.
func (s *documentService) List(ctx context.Context, limit int) ([]model.DocumentListItem, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	docs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]model.DocumentListItem, 0, len(docs))
	for _, doc := range docs {
		item := model.DocumentListItem{
			ID:           doc.ID,
			Hash:         doc.Hash,
			FileSize:     doc.Size,
			MimeType:     doc.ContentType,
			CreatedAt:    doc.CreatedAt,
			Descriptions: doc.Descriptions,
		}
		if item.MimeType == "" {
			item.MimeType = defaultContentType
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = time.Now().UTC()
		}
		if item.Descriptions == nil {
			item.Descriptions = []string{}
		}
		items = append(items, item)
	}
	return items, nil
}

// storageKey addresses a blob by its fingerprint plus a sanitized extension
// taken from the uploaded filename, so equal content always lands on the
// same key.
func storageKey(sum, filename string) string {
	return keyPrefix + sum + extensionFor(filename)
}

func extensionFor(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" || ext == "." || len(ext) > 8 {
		return defaultExtension
	}
	for _, r := range ext[1:] {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return defaultExtension
		}
	}
	return strings.ToLower(ext)
}
