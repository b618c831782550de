package gcs

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/talentgrid/talentgrid-api/pkg/helpers"
)

// Uploader stores raw file bytes in a GCS bucket and returns a stable public
// URL. The caller treats the URL as opaque; no cleanup of stored objects is
// performed on later failures.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewUploader(client *storage.Client, bucket string) *Uploader {
	return &Uploader{client: client, bucket: bucket}
}

// Upload writes r under folder/<random>.<ext of filename> and returns its URL.
func (u *Uploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))
	return helpers.UploadObject(ctx, u.client, u.bucket, objectPath, contentType, r)
}
