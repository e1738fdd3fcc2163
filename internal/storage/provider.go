package storage

import (
	"errors"
	"io"
	"time"
)

var ErrNotExist = errors.New("object does not exist")

// Provider defines the behavior for any storage backend.
type Provider interface {
	List(bucket, prefix string) ([]string, error)
	Get(bucket, key string) (*FileObject, error)
	Put(bucket, key string, body io.ReadSeeker, contentType string) error
	Delete(bucket, key string) error
	Exists(bucket, key string) (bool, error)
}

// FileObject is the provider-agnostic representation of a file.
type FileObject struct {
	Body          io.ReadCloser
	ContentLength int64
	ContentType   string
	LastModified  time.Time
}
