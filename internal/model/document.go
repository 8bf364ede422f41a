package model

import "time"

// Document is the metadata record for one distinct uploaded content.
// This is a pure domain model with no database-specific dependencies or tags.
//
// The identity scheme belongs to the repository adapter: the postgres
// realization assigns a surrogate UUID, the dynamo and memory realizations use
// the content hash itself as the ID. Callers must treat ID as opaque.
// Everything except Descriptions is immutable after creation.
type Document struct {
	ID           string    `json:"id"`
	Hash         string    `json:"hash"`
	StoragePath  string    `json:"storage_path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Descriptions []string  `json:"descriptions,omitempty"`
}

// DocumentListItem is the projection returned by the list endpoint.
type DocumentListItem struct {
	ID           string    `json:"id"`
	Hash         string    `json:"hash"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	CreatedAt    time.Time `json:"created_at"`
	Descriptions []string  `json:"descriptions"`
}
