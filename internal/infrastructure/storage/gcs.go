package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oksasatya/bootcamp-directory/internal/application"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCS stores photos as objects under Prefix in Bucket.
type GCS struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket, Prefix: "uploads"}
}

// Save uploads r and returns the object's public URL.
func (g *GCS) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	object := path.Join(g.Prefix, name)
	wc := g.Client.Bucket(g.Bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // photos are small; upload in one request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(g.Bucket, object), nil
}

// PublicURL assumes the bucket grants public read.
func PublicURL(bucket, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}

var _ application.PhotoStore = (*GCS)(nil)
