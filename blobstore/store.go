// Package blobstore abstracts where index blobs live: local disk, memory,
// or S3-compatible object storage.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for storing and retrieving immutable index
// blobs.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a new writable blob. The blob becomes visible under
	// name once Close returns successfully.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Delete removes a blob.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	// Close releases the handle.
	Close() error
}

// WritableBlob is a streaming write handle to a new blob.
type WritableBlob interface {
	io.Writer
	// Sync flushes buffered data to durable storage where supported.
	Sync() error
	// Close finalizes the blob.
	Close() error
}

// Mappable is an optional interface for Blobs whose bytes are directly
// addressable (zero-copy).
type Mappable interface {
	// Bytes returns the underlying byte slice.
	// The slice is valid until the Blob is closed.
	Bytes() ([]byte, error)
}

// NewBlobReader adapts a Blob to a sequential io.Reader.
func NewBlobReader(ctx context.Context, b Blob) io.Reader {
	return &blobReader{ctx: ctx, b: b}
}

type blobReader struct {
	ctx context.Context
	b   Blob
	off int64
}

func (r *blobReader) Read(p []byte) (int, error) {
	n, err := r.b.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
