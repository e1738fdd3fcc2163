package storage

import (
	"io"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/carteradamski/DJ-SONG-ORDER-RECCOMENDER/internal/config"
)

// Client is the drop-box for CSV imports and the shelf for exported sets.
type Client struct {
	backend       Provider
	bucketImports string
	bucketExports string
}

func New(cfg *config.Config) *Client {
	var backend Provider

	if cfg.Storage.Provider == "local" {
		backend = NewLocalProvider(cfg.Storage.LocalRoot)
		log.Printf("📁 Local storage at %s", cfg.Storage.LocalRoot)
	} else {
		s3Config := &aws.Config{
			Credentials:      credentials.NewStaticCredentials(cfg.Storage.KeyID, cfg.Storage.AppKey, ""),
			Endpoint:         aws.String(cfg.Storage.Endpoint),
			Region:           aws.String(cfg.Storage.Region),
			S3ForcePathStyle: aws.Bool(true),
		}
		sess := session.Must(session.NewSession(s3Config))
		backend = &S3Provider{api: s3.New(sess)}
		log.Printf("☁️ S3 storage at %s", cfg.Storage.Endpoint)
	}

	return NewWithProvider(backend, cfg.Storage.BucketImports, cfg.Storage.BucketExports)
}

func NewWithProvider(backend Provider, imports, exports string) *Client {
	return &Client{
		backend:       backend,
		bucketImports: imports,
		bucketExports: exports,
	}
}

// --- Import drop-box ---

func (c *Client) UploadImportFile(key string, body io.ReadSeeker) error {
	return c.backend.Put(c.bucketImports, key, body, "text/csv")
}

func (c *Client) ListImportFiles() ([]string, error) {
	return c.backend.List(c.bucketImports, "")
}

func (c *Client) DownloadImportFile(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketImports, key)
}

func (c *Client) DeleteImportFile(key string) error {
	return c.backend.Delete(c.bucketImports, key)
}

// --- Exports ---

func (c *Client) UploadExportFile(key string, body io.ReadSeeker) error {
	return c.backend.Put(c.bucketExports, key, body, "text/csv")
}

func (c *Client) DownloadExportFile(key string) (*FileObject, error) {
	return c.backend.Get(c.bucketExports, key)
}

func (c *Client) ExportExists(key string) (bool, error) {
	return c.backend.Exists(c.bucketExports, key)
}
