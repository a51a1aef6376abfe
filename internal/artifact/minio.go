package artifact

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig locates a model object in an S3-compatible bucket.
type MinioConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	UseSSL          bool
	Bucket          string
	Object          string
}

// Minio downloads artifacts from object storage.
type Minio struct {
	client *minio.Client
	cfg    MinioConfig
}

// NewMinio creates the storage client. No request is made until Download.
func NewMinio(cfg MinioConfig) (*Minio, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" || cfg.Object == "" {
		return nil, fmt.Errorf("minio: endpoint, bucket and object are required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: create client: %w", err)
	}
	return &Minio{client: client, cfg: cfg}, nil
}

// Download writes the object to dst.
func (m *Minio) Download(ctx context.Context, dst string) error {
	if _, err := m.client.StatObject(ctx, m.cfg.Bucket, m.cfg.Object, minio.StatObjectOptions{}); err != nil {
		return fmt.Errorf("stat %s/%s: %w", m.cfg.Bucket, m.cfg.Object, err)
	}
	if err := m.client.FGetObject(ctx, m.cfg.Bucket, m.cfg.Object, dst, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("get %s/%s: %w", m.cfg.Bucket, m.cfg.Object, err)
	}
	return nil
}

func (m *Minio) String() string {
	return fmt.Sprintf("minio:%s/%s", m.cfg.Bucket, m.cfg.Object)
}
