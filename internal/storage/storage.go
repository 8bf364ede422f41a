package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Package storage contains the blob store abstraction: addressable byte
// storage keyed by a locator the service derives from the content hash.

// ErrObjectNotFound is returned by Get when the key does not resolve to stored
// bytes. Transport and backend failures are returned as distinct errors.
var ErrObjectNotFound = errors.New("object not found")

// PutObjectOptions define optional parameters for storing blobs.
// Size should be the exact number of bytes when known.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored blob. ETag is the
// backend revision tag when one exists; filesystem backends leave it empty.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// Storage is the blob store interface. Because keys embed the content
// fingerprint, Put is only ever called twice with the same key for identical
// bytes, so every implementation is idempotent in effect. Implementations are
// safe for concurrent use.
type Storage interface {
	// Put stores the bytes read from r under the given key.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves a blob as a streaming reader alongside its info.
	// A missing key yields ErrObjectNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
}
