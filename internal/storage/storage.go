package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains file/object storage abstractions for object stores
// (S3-compatible). Implementations must avoid using local disk and rely on
// streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and
// the implementation will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a small capability interface over an S3-compatible object store.
// Handlers never touch the provider directly, so the backend is swappable
// without touching handler logic.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PublicURL returns the durable, externally reachable URL for a stored key.
	PublicURL(key string) string
}
