// Package storage keeps uploaded resumes in an object store.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when a stored file no longer exists.
var ErrObjectNotFound = errors.New("stored object not found")

// StoredFile describes an uploaded object. PreviewURL is set only by
// backends able to render a preview.
type StoredFile struct {
	Key        string
	URL        string
	PreviewURL *string
}

// FileStore is the external file storage collaborator. Implementations must
// be safe for concurrent use.
type FileStore interface {
	// Put stores content under name and returns where it can be fetched.
	Put(ctx context.Context, name string, content []byte, contentType string) (*StoredFile, error)
	// Open streams the object previously returned as url.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
	// Delete removes the object previously returned as url.
	Delete(ctx context.Context, url string) error
}
